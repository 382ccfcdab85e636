package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/1F47E/geo-photo-search/pkg/archive"
	"github.com/1F47E/geo-photo-search/pkg/models"
	"github.com/1F47E/geo-photo-search/pkg/panoramio"
	"github.com/1F47E/geo-photo-search/pkg/photoindex"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search photos around a location",
	Long: `Fetch one page of photos around --lat/--lon within --radius km, or inside
an explicit --box. Results can be added to the local index and the archive.`,
	RunE: runSearch,
}

var (
	searchLat     float64
	searchLon     float64
	searchRadius  float64
	searchCount   int
	searchFrom    int
	searchSet     string
	searchSize    string
	searchOrder   string
	searchBox     string
	searchJSON    bool
	searchIndex   bool
	searchArchive bool
)

func init() {
	f := searchCmd.Flags()
	f.Float64Var(&searchLat, "lat", 0, "Center latitude")
	f.Float64Var(&searchLon, "lon", 0, "Center longitude")
	f.Float64VarP(&searchRadius, "radius", "r", 0, "Search radius in km")
	f.IntVarP(&searchCount, "count", "n", 0, "Number of photos to fetch")
	f.IntVar(&searchFrom, "from", 0, "Offset of the first photo")
	f.StringVar(&searchSet, "set", "", "Result set: public, full or a user id")
	f.StringVar(&searchSize, "size", "", "Image size: original, thumbnail, mini_square, square, small, medium")
	f.StringVar(&searchOrder, "order", "", "Ordering: upload_date or popularity")
	f.StringVar(&searchBox, "box", "", "Explicit box as minLat,maxLat,minLon,maxLon (disables radius box)")
	f.BoolVar(&searchJSON, "json", false, "Output results as JSON")
	f.BoolVar(&searchIndex, "save-index", false, "Add results to the local index file")
	f.BoolVar(&searchArchive, "archive", false, "Upsert results into the PostGIS archive")
}

// parseBox parses "minLat,maxLat,minLon,maxLon"
func parseBox(s string) (models.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return models.BoundingBox{}, fmt.Errorf("box %q: want minLat,maxLat,minLon,maxLon", s)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return models.BoundingBox{}, fmt.Errorf("box %q: %w", s, err)
		}
		v[i] = f
	}
	return models.NewBoundingBox(v[0], v[1], v[2], v[3]), nil
}

func newClient(cmd *cobra.Command) (*panoramio.Client, error) {
	client, err := panoramio.NewClient(
		panoramio.WithConfig(cfg.ToSearchConfig()),
		panoramio.WithTimeout(cfg.HTTP.Timeout),
		panoramio.WithCache(cfg.HTTP.CacheSize),
		panoramio.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	sc := client.Config()
	f := cmd.Flags()
	if f.Changed("lat") || f.Changed("lon") || f.Changed("radius") {
		lat, lon, radius := sc.Center.Lat, sc.Center.Lon, sc.RadiusKm
		if f.Changed("lat") {
			lat = searchLat
		}
		if f.Changed("lon") {
			lon = searchLon
		}
		if f.Changed("radius") {
			radius = searchRadius
		}
		client.SetLocation(lat, lon, radius)
	}
	if f.Changed("set") {
		client.SetResultSet(searchSet)
	}
	if f.Changed("size") {
		client.SetImageSize(searchSize)
	}
	if f.Changed("order") {
		client.SetOrdering(searchOrder)
	}
	return client, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	computeBox := true
	if searchBox != "" {
		box, err := parseBox(searchBox)
		if err != nil {
			return err
		}
		client.SetBoundingBox(box.MinLat(), box.MaxLat(), box.MinLon(), box.MaxLon())
		computeBox = false
	}

	photos, err := client.Search(ctx, searchCount, computeBox, searchFrom)
	if err != nil {
		return err
	}

	if searchIndex {
		if err := saveToIndex(photos); err != nil {
			return err
		}
	}
	if searchArchive {
		if err := saveToArchive(ctx, photos); err != nil {
			return err
		}
	}

	p := newPrinter(cmd.OutOrStdout())
	if searchJSON {
		return p.printJSON(photos)
	}
	center := client.Config().Center
	if searchBox != "" {
		p.printPhotos(photos, nil)
	} else {
		p.printPhotos(photos, &center)
	}
	return nil
}

func saveToIndex(photos []*models.Photo) error {
	idx, err := photoindex.LoadOrNew(cfg.Index.File)
	if err != nil {
		return err
	}
	added := idx.IndexPhotos(photos)
	if err := idx.SaveToFile(cfg.Index.File); err != nil {
		return err
	}
	log.Info().
		Int("added", added).
		Int("total", idx.Count()).
		Str("file", cfg.Index.File).
		Msg("index updated")
	return nil
}

func openArchive(ctx context.Context) (*archive.Archive, error) {
	if cfg.Archive.DSN == "" {
		return nil, fmt.Errorf("archive DSN not configured (archive.dsn or PANORAMIO_ARCHIVE_DSN)")
	}
	return archive.Open(ctx, cfg.Archive.DSN)
}

func saveToArchive(ctx context.Context, photos []*models.Photo) error {
	a, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	written, err := a.SavePhotos(ctx, photos)
	if err != nil {
		return err
	}
	log.Info().Int("written", written).Msg("archive updated")
	return nil
}
