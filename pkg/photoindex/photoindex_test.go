package photoindex

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/1F47E/geo-photo-search/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func photoAt(id string, lat, lon float64) *models.Photo {
	return &models.Photo{
		ID:       id,
		Title:    id,
		PhotoURL: "http://www.panoramio.com/photo/" + id,
		Location: &models.Location{Lat: lat, Lon: lon},
	}
}

func ids(photos []*models.Photo) map[string]bool {
	out := make(map[string]bool, len(photos))
	for _, p := range photos {
		out[p.ID] = true
	}
	return out
}

func TestNew(t *testing.T) {
	idx := New()
	assert.NotNil(t, idx)
	assert.NotEmpty(t, idx.partitions)
	assert.Equal(t, 0, idx.Count())
}

func TestIndexPhotos(t *testing.T) {
	idx := NewWithPartitions(4)

	photos := []*models.Photo{
		photoAt("1", 37.7749, -122.4194), // San Francisco
		photoAt("2", 34.0522, -118.2437), // Los Angeles
		photoAt("3", 40.7128, -74.0060),  // New York
		{ID: "4", Title: "no location"},
		nil,
	}

	added := idx.IndexPhotos(photos)
	assert.Equal(t, 3, added)
	assert.Equal(t, 3, idx.Count())

	// same photos again are deduplicated
	added = idx.IndexPhotos(photos[:2])
	assert.Equal(t, 0, added)
	assert.Equal(t, 3, idx.Count())
}

func TestIndexPhotosDedupesByPageURL(t *testing.T) {
	idx := New()
	a := &models.Photo{PhotoURL: "p", Location: &models.Location{Lat: 1, Lon: 1}}
	b := &models.Photo{PhotoURL: "p", Location: &models.Location{Lat: 1, Lon: 1}}

	assert.Equal(t, 1, idx.IndexPhotos([]*models.Photo{a, b}))
}

func TestQueryBox(t *testing.T) {
	idx := New()
	idx.IndexPhotos([]*models.Photo{
		photoAt("SF", 37.7749, -122.4194),
		photoAt("LA", 34.0522, -118.2437),
		photoAt("SD", 32.7157, -117.1611),
		photoAt("NYC", 40.7128, -74.0060),
		photoAt("CHI", 41.8781, -87.6298),
	})

	results, err := idx.QueryBox(models.NewBoundingBox(32.0, 42.0, -125.0, -114.0))
	require.NoError(t, err)
	assert.Len(t, results, 3)

	found := ids(results)
	assert.True(t, found["SF"])
	assert.True(t, found["LA"])
	assert.True(t, found["SD"])
	assert.False(t, found["NYC"])
	assert.False(t, found["CHI"])
}

func TestQueryBoxInvalid(t *testing.T) {
	idx := New()
	_, err := idx.QueryBox(models.NewBoundingBox(10, 5, 0, 1))
	assert.ErrorIs(t, err, ErrInvalidBox)
}

func TestQueryRadius(t *testing.T) {
	idx := New()

	sfLat, sfLon := 37.7749, -122.4194
	idx.IndexPhotos([]*models.Photo{
		photoAt("SF", sfLat, sfLon),
		photoAt("Oakland", 37.8044, -122.2712),    // ~13km
		photoAt("San Jose", 37.3382, -121.8863),   // ~48km
		photoAt("Sacramento", 38.5816, -121.4944), // ~120km
		photoAt("LA", 34.0522, -118.2437),         // ~560km
	})

	testCases := []struct {
		name     string
		radius   float64
		expected []string
	}{
		{"10km radius", 10, []string{"SF"}},
		{"20km radius", 20, []string{"SF", "Oakland"}},
		{"80km radius", 80, []string{"SF", "Oakland", "San Jose"}},
		{"150km radius", 150, []string{"SF", "Oakland", "San Jose", "Sacramento"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := idx.QueryRadius(models.Location{Lat: sfLat, Lon: sfLon}, tc.radius)
			assert.NoError(t, err)
			assert.Len(t, results, len(tc.expected))

			found := ids(results)
			for _, expectedID := range tc.expected {
				assert.True(t, found[expectedID], "Expected %s in results", expectedID)
			}
		})
	}

	_, err := idx.QueryRadius(models.Location{}, -1)
	assert.ErrorIs(t, err, ErrInvalidRadius)
}

func TestQueryRadiusHighLatitude(t *testing.T) {
	idx := New()
	// 0.5 degrees of longitude at 70N is about 19 km
	idx.IndexPhotos([]*models.Photo{photoAt("east", 70.0, 20.5)})

	results, err := idx.QueryRadius(models.Location{Lat: 70.0, Lon: 20.0}, 25)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestQueryRadiusAcrossAntimeridian(t *testing.T) {
	idx := NewWithPartitions(4)
	idx.IndexPhotos([]*models.Photo{
		photoAt("west", -17, -179.99),
		photoAt("east", -17, 179.98),
		photoAt("far", -17, -178),
	})

	results, err := idx.QueryRadius(models.Location{Lat: -17, Lon: 179.99}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, map[string]bool{"west": true, "east": true}, ids(results))

	results, err = idx.QueryRadius(models.Location{Lat: -17, Lon: -179.99}, 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"west": true, "east": true}, ids(results))

	nearest := idx.NearestNeighbors(models.Location{Lat: -17, Lon: 179.99}, 1)
	require.Len(t, nearest, 1)
}

func TestWrapLon(t *testing.T) {
	assert.Equal(t, [][2]float64{{10, 20}}, wrapLon(10, 20))
	assert.Equal(t, [][2]float64{{170, 180}, {-180, -175}}, wrapLon(170, 185))
	assert.Equal(t, [][2]float64{{-180, -170}, {175, 180}}, wrapLon(-185, -170))
	assert.Equal(t, [][2]float64{{-180, 180}}, wrapLon(-300, 60))
}

func TestNearestNeighbors(t *testing.T) {
	idx := New()
	idx.IndexPhotos([]*models.Photo{
		photoAt("1", 37.7749, -122.4194),
		photoAt("2", 37.7849, -122.4094),
		photoAt("3", 37.7649, -122.4294),
		photoAt("4", 37.8049, -122.3994),
		photoAt("5", 37.7549, -122.4394),
	})

	results := idx.NearestNeighbors(models.Location{Lat: 37.7749, Lon: -122.4194}, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "1", results[0].ID)

	assert.Nil(t, idx.NearestNeighbors(models.Location{}, 0))
	assert.Len(t, idx.NearestNeighbors(models.Location{}, 50), 5)
}

func TestClear(t *testing.T) {
	idx := New()
	idx.IndexPhotos(generateRandomPhotos(50))
	require.Equal(t, 50, idx.Count())

	idx.Clear()
	assert.Equal(t, 0, idx.Count())
	results, err := idx.QueryBox(models.NewBoundingBox(-90, 90, -180, 180))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPersistence(t *testing.T) {
	index1 := New()
	index1.IndexPhotos(generateRandomPhotos(100))

	file := filepath.Join(t.TempDir(), "photos.gob")
	require.NoError(t, index1.SaveToFile(file))

	index2, err := LoadOrNew(file)
	require.NoError(t, err)
	assert.Equal(t, index1.Count(), index2.Count())

	box := models.NewBoundingBox(30, 40, -120, -110)
	results1, err := index1.QueryBox(box)
	require.NoError(t, err)
	results2, err := index2.QueryBox(box)
	require.NoError(t, err)
	assert.Equal(t, len(results1), len(results2))
}

func TestLoadOrNewMissingFile(t *testing.T) {
	idx, err := LoadOrNew(filepath.Join(t.TempDir(), "missing.gob"))
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Count())
}

func TestConcurrentQueries(t *testing.T) {
	idx := New()
	idx.IndexPhotos(generateRandomPhotos(5000))

	done := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		go func(i int) {
			defer func() { done <- true }()

			switch i % 3 {
			case 0:
				_, err := idx.QueryBox(models.NewBoundingBox(30, 40, -120, -100))
				assert.NoError(t, err)
			case 1:
				_, err := idx.QueryRadius(models.Location{Lat: 40, Lon: -100}, 200)
				assert.NoError(t, err)
			case 2:
				assert.NotNil(t, idx.NearestNeighbors(models.Location{Lat: 40, Lon: -100}, 10))
			}
		}(i)
	}
	for i := 0; i < 50; i++ {
		<-done
	}
}

// Helper function to generate random photos
func generateRandomPhotos(n int) []*models.Photo {
	photos := make([]*models.Photo, n)
	for i := 0; i < n; i++ {
		photos[i] = photoAt(
			fmt.Sprintf("photo_%d", i),
			rand.Float64()*20+30,  // 30-50
			rand.Float64()*40-120, // -120 to -80
		)
	}
	return photos
}

func BenchmarkQueryRadius(b *testing.B) {
	idx := New()
	idx.IndexPhotos(generateRandomPhotos(100000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.QueryRadius(models.Location{Lat: 37.5, Lon: -112.5}, 50)
	}
}
