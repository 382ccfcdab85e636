package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/1F47E/geo-photo-search/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBox(t *testing.T) {
	box, err := parseBox("-34.1, -33.7,151.0,151.4")
	require.NoError(t, err)
	assert.Equal(t, models.NewBoundingBox(-34.1, -33.7, 151.0, 151.4), box)

	_, err = parseBox("1,2,3")
	assert.Error(t, err)
	_, err = parseBox("1,2,3,x")
	assert.Error(t, err)
}

func TestPrinterPlain(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)
	assert.False(t, p.styled)

	p.printPhotos([]*models.Photo{
		{Title: "Opera House", FileURL: "f1", PhotoURL: "p1", Location: &models.Location{Lat: -33.8568, Lon: 151.2153}},
		{PhotoURL: "p2"},
	}, &models.Location{Lat: -33.8846, Lon: 151.2181})

	out := buf.String()
	assert.Contains(t, out, "1. Opera House")
	assert.Contains(t, out, "image: f1")
	assert.Contains(t, out, "page:  p1")
	assert.Contains(t, out, "km")
	assert.Contains(t, out, "2. (untitled)")

	buf.Reset()
	p.printPhotos(nil, nil)
	assert.Contains(t, buf.String(), "No photos found")

	buf.Reset()
	require.NoError(t, p.printJSON(nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestSearchThenNearby(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"count":1,"photos":[{"photo_id":1,"photo_title":"Harbour Bridge","photo_url":"p1","photo_file_url":"f1","latitude":-33.8523,"longitude":151.2108}]}`))
	}))
	defer srv.Close()

	indexFile := filepath.Join(t.TempDir(), "photos.gob")
	t.Setenv("PANORAMIO_BASE_URL", srv.URL)
	t.Setenv("PANORAMIO_INDEX_FILE", indexFile)
	t.Setenv("PANORAMIO_LOG_LEVEL", "off")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"--config", "", "search", "--lat", "-33.8846", "--lon", "151.2181", "-n", "3", "--save-index"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Harbour Bridge")

	_, err := os.Stat(indexFile)
	require.NoError(t, err)

	out.Reset()
	rootCmd.SetArgs([]string{"--config", "", "nearby", "--lat", "-33.8846", "--lon", "151.2181", "-r", "10"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "1. Harbour Bridge")
}
