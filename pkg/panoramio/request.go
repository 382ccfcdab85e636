package panoramio

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/1F47E/geo-photo-search/pkg/models"
)

// Query parameter names understood by the API
const (
	paramSet   = "set"
	paramFrom  = "from"
	paramTo    = "to"
	paramMinX  = "minx"
	paramMinY  = "miny"
	paramMaxX  = "maxx"
	paramMaxY  = "maxy"
	paramSize  = "size"
	paramOrder = "order"
)

// BuildURL assembles the GET URL for cfg. Longitudes go in the x parameters
// and latitudes in the y parameters.
func BuildURL(cfg models.SearchConfig) (string, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	q := u.Query()
	q.Set(paramSet, cfg.Set)
	q.Set(paramFrom, strconv.Itoa(cfg.From))
	q.Set(paramTo, strconv.Itoa(cfg.From+cfg.Count))
	q.Set(paramMinX, formatCoord(cfg.Box.MinLon()))
	q.Set(paramMinY, formatCoord(cfg.Box.MinLat()))
	q.Set(paramMaxX, formatCoord(cfg.Box.MaxLon()))
	q.Set(paramMaxY, formatCoord(cfg.Box.MaxLat()))
	q.Set(paramSize, cfg.Size)
	q.Set(paramOrder, cfg.Order)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// applyHeaders sets the user agent and every well-formed "Name: value" line
func applyHeaders(req *http.Request, userAgent string, lines []string) {
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	for _, line := range lines {
		name, value, ok := parseHeaderLine(line)
		if !ok {
			continue
		}
		req.Header.Add(name, value)
	}
}

func parseHeaderLine(line string) (string, string, bool) {
	name, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(value), true
}
