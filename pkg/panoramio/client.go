// Package panoramio provides a client for a coordinate based photo search API.
//
// A Client holds a mutable search configuration (centre, radius, bounding
// box, paging, size and ordering selectors) that is adjusted through setters
// and turned into one GET request per Search call.
package panoramio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/1F47E/geo-photo-search/pkg/geo"
	"github.com/1F47E/geo-photo-search/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// DefaultCount is the page size Search uses when called through SearchDefault
const DefaultCount = 5

// Response is the decoded body of a successful search
type Response struct {
	Count   int             `json:"count"`
	HasMore bool            `json:"has_more"`
	Photos  []*models.Photo `json:"photos"`
}

// clone deep-copies the photos so cached entries never share state with callers
func (r *Response) clone() *Response {
	out := *r
	if r.Photos != nil {
		out.Photos = make([]*models.Photo, len(r.Photos))
		for i, p := range r.Photos {
			out.Photos[i] = p.Clone()
		}
	}
	return &out
}

// Client is a photo search client.
// Configuration setters and Search may be called from several goroutines,
// but a configure-then-search sequence is only meaningful when the caller
// serialises it.
type Client struct {
	mu  sync.Mutex
	cfg models.SearchConfig

	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
	cache   *responseCache
	metrics *clientMetrics
}

// Option configures a Client
type Option func(*Client) error

// WithHTTPClient uses hc for all requests. It takes precedence over WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.client = hc
		return nil
	}
}

// WithTimeout sets the timeout of the default http client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.timeout = timeout
		return nil
	}
}

// WithLogger sets the logger for request and failure events
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithConfig replaces the whole search configuration
func WithConfig(cfg models.SearchConfig) Option {
	return func(c *Client) error {
		c.cfg = cfg.Clone()
		return nil
	}
}

// WithBaseURL sets the endpoint the query string is appended to
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		c.cfg.BaseURL = baseURL
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.cfg.UserAgent = userAgent
		return nil
	}
}

// WithHeaders replaces the extra "Name: value" header lines
func WithHeaders(lines ...string) Option {
	return func(c *Client) error {
		c.cfg.Headers = append([]string(nil), lines...)
		return nil
	}
}

// WithCache keeps up to size successful responses in memory, keyed by
// request URL. Without it every search goes to the network.
func WithCache(size int) Option {
	return func(c *Client) error {
		if size <= 0 {
			return nil
		}
		cache, err := newResponseCache(size)
		if err != nil {
			return fmt.Errorf("failed to create response cache: %w", err)
		}
		c.cache = cache
		return nil
	}
}

// WithMetrics registers request counters and latency histograms on reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) error {
		if reg != nil {
			c.metrics = newClientMetrics(reg)
		}
		return nil
	}
}

// NewClient creates a client with the default search configuration
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		cfg:     models.DefaultSearchConfig(),
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.client == nil {
		c.client = newOutbound(c.timeout)
	}
	return c, nil
}

// SetLocation sets the centre of the search and its radius in kilometers
func (c *Client) SetLocation(lat, lon, radiusKm float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Center = models.Location{Lat: lat, Lon: lon}
	c.cfg.RadiusKm = radiusKm
}

// SetBoundingBox sets an explicit box. Search only keeps it when called
// with computeBox set to false.
func (c *Client) SetBoundingBox(minLat, maxLat, minLon, maxLon float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Box = models.NewBoundingBox(minLat, maxLat, minLon, maxLon)
}

// SetOrdering sets the order token, usually "upload_date" or "popularity"
func (c *Client) SetOrdering(order string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Order = order
}

// SetResultSet sets "public", "full" or the id of the user whose photos are wanted
func (c *Client) SetResultSet(set string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Set = set
}

// SetImageSize sets the size token, e.g. "medium" or "thumbnail"
func (c *Client) SetImageSize(size string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Size = size
}

// Config returns a copy of the current search configuration
func (c *Client) Config() models.SearchConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Clone()
}

// BuildURL returns the request URL for the current configuration
func (c *Client) BuildURL() (string, error) {
	return BuildURL(c.Config())
}

// SearchDefault searches with a page of DefaultCount photos, a box derived
// from the current centre and radius, and the stored start offset.
func (c *Client) SearchDefault(ctx context.Context) ([]*models.Photo, error) {
	return c.Search(ctx, DefaultCount, true, 0)
}

// Search fetches one page of photos.
//
// A non-zero startOffset or count replaces the stored value and stays in the
// configuration for later calls. With computeBox the box is recomputed from
// centre and radius, replacing any box set with SetBoundingBox.
//
// Transport failures and non-200 responses are logged and reported as no
// photos with a nil error. A 200 response that is not valid JSON returns an
// error wrapping ErrDecode.
func (c *Client) Search(ctx context.Context, count int, computeBox bool, startOffset int) ([]*models.Photo, error) {
	c.mu.Lock()
	if startOffset != 0 {
		c.cfg.From = startOffset
	}
	if count != 0 {
		c.cfg.Count = count
	}
	if computeBox {
		c.cfg.Box = geo.BoundingBoxAround(c.cfg.Center, c.cfg.RadiusKm)
	}
	cfg := c.cfg.Clone()
	c.mu.Unlock()

	resp, err := c.fetch(ctx, cfg)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if isSilent(err) {
			c.logger.Warn().Err(err).Msg("photo search returned no result")
			return nil, nil
		}
		return nil, err
	}

	c.logger.Info().
		Int("photos", len(resp.Photos)).
		Int("from", cfg.From).
		Int("count", cfg.Count).
		Msg("photo search completed")
	return resp.Photos, nil
}

// Fetch sends a request for the current configuration as is, without
// recomputing the box, and reports failures as *TransportError,
// *StatusError or ErrDecode.
func (c *Client) Fetch(ctx context.Context) (*Response, error) {
	return c.fetch(ctx, c.Config())
}

func (c *Client) fetch(ctx context.Context, cfg models.SearchConfig) (*Response, error) {
	requestURL, err := BuildURL(cfg)
	if err != nil {
		return nil, err
	}
	started := time.Now()

	if c.cache != nil {
		if resp, ok := c.cache.get(requestURL); ok {
			c.logger.Debug().Str("url", requestURL).Msg("photo search served from cache")
			c.metrics.observe(outcomeCacheHit, started)
			return resp, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	applyHeaders(req, cfg.UserAgent, cfg.Headers)

	c.logger.Debug().Str("url", requestURL).Msg("sending photo search request")

	httpResp, err := c.client.Do(req)
	if err != nil {
		c.metrics.observe(outcomeTransport, started)
		return nil, &TransportError{URL: requestURL, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		c.metrics.observe(outcomeStatus, started)
		return nil, &StatusError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			URL:        requestURL,
		}
	}

	var resp Response
	if err := decodeResponse(httpResp.Body, &resp); err != nil {
		c.metrics.observe(outcomeDecode, started)
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	c.metrics.observe(outcomeOK, started)

	if c.cache != nil {
		c.cache.add(requestURL, &resp)
	}
	return &resp, nil
}

// decodeResponse decodes exactly one JSON value from r; trailing content is an error
func decodeResponse(r io.Reader, resp *Response) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(resp); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return fmt.Errorf("unexpected data after JSON body: %w", err)
	}
	return nil
}
