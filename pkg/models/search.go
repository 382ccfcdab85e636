package models

// Result sets
const (
	SetPublic = "public"
	SetFull   = "full"
)

// Image sizes
const (
	SizeOriginal   = "original"
	SizeThumbnail  = "thumbnail"
	SizeMiniSquare = "mini_square"
	SizeSquare     = "square"
	SizeSmall      = "small"
	SizeMedium     = "medium"
)

// Orderings
const (
	OrderUploadDate = "upload_date"
	OrderPopularity = "popularity"
)

const (
	DefaultBaseURL   = "http://www.panoramio.com/map/get_panoramas.php"
	DefaultUserAgent = "info@mypanoramiobot.com"
	ClientVersion    = "0.1"
	DefaultRadiusKm  = 20
	DefaultCount     = 20
)

// SearchConfig holds everything that goes into a search request.
// None of the selector values are validated; the API rejects what it does
// not understand.
type SearchConfig struct {
	Center   Location    `json:"center" yaml:"center"`
	RadiusKm float64     `json:"radius_km" yaml:"radius_km"`
	Box      BoundingBox `json:"box" yaml:"-"`

	// Set is "public", "full" or a numeric user id
	Set   string `json:"set" yaml:"set"`
	From  int    `json:"from" yaml:"from"`
	Count int    `json:"count" yaml:"count"`
	Size  string `json:"size" yaml:"size"`
	Order string `json:"order" yaml:"order"`

	UserAgent string `json:"user_agent" yaml:"user_agent"`
	// Headers are raw "Name: value" lines sent with every request
	Headers []string `json:"headers" yaml:"headers"`
	BaseURL string   `json:"base_url" yaml:"base_url"`
}

// DefaultSearchConfig returns a config centred on Sydney with a 20 km radius
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Center:    Location{Lat: -33.8846, Lon: 151.2181},
		RadiusKm:  DefaultRadiusKm,
		Set:       SetPublic,
		From:      0,
		Count:     DefaultCount,
		Size:      SizeMedium,
		Order:     OrderUploadDate,
		UserAgent: DefaultUserAgent,
		Headers:   []string{"Panoramio-Client-Version: " + ClientVersion},
		BaseURL:   DefaultBaseURL,
	}
}

// Clone returns a copy that shares no slices with c
func (c SearchConfig) Clone() SearchConfig {
	out := c
	if c.Headers != nil {
		out.Headers = append([]string(nil), c.Headers...)
	}
	return out
}
