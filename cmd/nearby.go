package main

import (
	"fmt"

	"github.com/1F47E/geo-photo-search/pkg/models"
	"github.com/1F47E/geo-photo-search/pkg/photoindex"
	"github.com/spf13/cobra"
)

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Query photos stored in the local index",
	Long:  `Run box, radius or nearest neighbour queries against the index built by "search --save-index".`,
	RunE:  runNearby,
}

var (
	nearbyType   string
	nearbyBox    string
	nearbyLat    float64
	nearbyLon    float64
	nearbyRadius float64
	nearbyK      int
	nearbyJSON   bool
	nearbyLimit  int
)

func init() {
	f := nearbyCmd.Flags()
	f.StringVarP(&nearbyType, "type", "t", "radius", "Query type: box, radius, nearest")
	f.StringVar(&nearbyBox, "box", "", "Box as minLat,maxLat,minLon,maxLon (box query)")
	f.Float64Var(&nearbyLat, "lat", 0, "Center latitude (radius/nearest query)")
	f.Float64Var(&nearbyLon, "lon", 0, "Center longitude (radius/nearest query)")
	f.Float64VarP(&nearbyRadius, "radius", "r", 10, "Radius in km (radius query)")
	f.IntVar(&nearbyK, "k", 10, "Number of nearest neighbors (nearest query)")
	f.BoolVar(&nearbyJSON, "json", false, "Output results as JSON")
	f.IntVar(&nearbyLimit, "limit", 100, "Maximum number of results to display")
}

func runNearby(cmd *cobra.Command, args []string) error {
	idx, err := photoindex.LoadOrNew(cfg.Index.File)
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}
	log.Debug().Int("photos", idx.Count()).Str("file", cfg.Index.File).Msg("index loaded")

	var (
		results []*models.Photo
		center  *models.Location
	)

	switch nearbyType {
	case "box":
		if nearbyBox == "" {
			return fmt.Errorf("box query requires --box")
		}
		box, err := parseBox(nearbyBox)
		if err != nil {
			return err
		}
		results, err = idx.QueryBox(box)
		if err != nil {
			return fmt.Errorf("box query failed: %w", err)
		}

	case "radius":
		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
			return fmt.Errorf("radius query requires --lat and --lon")
		}
		center = &models.Location{Lat: nearbyLat, Lon: nearbyLon}
		results, err = idx.QueryRadius(*center, nearbyRadius)
		if err != nil {
			return fmt.Errorf("radius query failed: %w", err)
		}

	case "nearest":
		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
			return fmt.Errorf("nearest query requires --lat and --lon")
		}
		center = &models.Location{Lat: nearbyLat, Lon: nearbyLon}
		results = idx.NearestNeighbors(*center, nearbyK)

	default:
		return fmt.Errorf("unknown query type: %s", nearbyType)
	}

	log.Info().Str("type", nearbyType).Int("found", len(results)).Msg("index query done")

	if nearbyLimit > 0 && len(results) > nearbyLimit {
		log.Info().Int("limit", nearbyLimit).Msg("showing first results only, use --limit to see more")
		results = results[:nearbyLimit]
	}

	p := newPrinter(cmd.OutOrStdout())
	if nearbyJSON {
		return p.printJSON(results)
	}
	p.printPhotos(results, center)
	return nil
}
