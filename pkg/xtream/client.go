package xtream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/playsync/playsync/internal/models"
	"github.com/playsync/playsync/internal/version"
)

// Default configuration values.
const (
	DefaultTimeout = 2 * time.Minute

	// DefaultFetchBatchSize is the number of items handed to the batch
	// sink at a time during FetchAll.
	DefaultFetchBatchSize = 2000

	// API endpoint paths.
	pathPlayerAPI = "/player_api.php"
	pathLive      = "/live"
	pathMovie     = "/movie"
	pathSeries    = "/series"

	// API actions.
	actionGetLiveCategories   = "get_live_categories"
	actionGetVODCategories    = "get_vod_categories"
	actionGetSeriesCategories = "get_series_categories"
	actionGetLiveStreams      = "get_live_streams"
	actionGetVODStreams       = "get_vod_streams"
	actionGetSeries           = "get_series"

	// Query parameter names.
	paramUsername = "username"
	paramPassword = "password"
	paramAction   = "action"

	defaultExtensionTS   = "ts"
	defaultExtensionMP4  = "mp4"
	defaultExtensionMKV  = "mkv"
	maxErrorBodyReadSize = 1024
)

// Client is an Xtream Codes API client.
type Client struct {
	// BaseURL is the server base URL (e.g., "http://example.com:8080").
	BaseURL string

	// Username is the API username.
	Username string

	// Password is the API password.
	Password string

	// HTTPClient is the standard HTTP client used for requests.
	// If nil, a default client with DefaultTimeout is used.
	HTTPClient *http.Client

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Xtream Codes API client.
func NewClient(baseURL, username, password string, opts ...ClientOption) *Client {
	c := &Client{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		Username: username,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		UserAgent: version.UserAgent(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithHTTPClient sets a custom standard library HTTP client. This allows
// injection of any *http.Client, including ones wrapped with retry logic
// or other middleware.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.HTTPClient = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.UserAgent = ua
	}
}

// WithTimeout creates a new HTTP client with the specified timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.HTTPClient = &http.Client{
			Timeout: timeout,
		}
	}
}

// apiURL builds the player_api.php URL with the given action.
func (c *Client) apiURL(action string) string {
	var u strings.Builder
	u.WriteString(fmt.Sprintf("%s%s?%s=%s&%s=%s",
		c.BaseURL,
		pathPlayerAPI,
		paramUsername, url.QueryEscape(c.Username),
		paramPassword, url.QueryEscape(c.Password)))

	if action != "" {
		u.WriteString("&" + paramAction + "=" + url.QueryEscape(action))
	}

	return u.String()
}

// doRequest performs an HTTP GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, requestURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyReadSize))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// GetAuthInfo retrieves authentication and server information. This is
// typically the first call to verify credentials.
func (c *Client) GetAuthInfo(ctx context.Context) (*AuthInfo, error) {
	var info AuthInfo
	if err := c.doRequest(ctx, c.apiURL(""), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetLiveCategories retrieves all live stream categories.
func (c *Client) GetLiveCategories(ctx context.Context) ([]ContentCategory, error) {
	var categories []ContentCategory
	if err := c.doRequest(ctx, c.apiURL(actionGetLiveCategories), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetVODCategories retrieves all video-on-demand categories.
func (c *Client) GetVODCategories(ctx context.Context) ([]ContentCategory, error) {
	var categories []ContentCategory
	if err := c.doRequest(ctx, c.apiURL(actionGetVODCategories), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetSeriesCategories retrieves all series categories.
func (c *Client) GetSeriesCategories(ctx context.Context) ([]ContentCategory, error) {
	var categories []ContentCategory
	if err := c.doRequest(ctx, c.apiURL(actionGetSeriesCategories), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetLiveStreams retrieves all live channels.
func (c *Client) GetLiveStreams(ctx context.Context) ([]LiveStream, error) {
	var streams []LiveStream
	if err := c.doRequest(ctx, c.apiURL(actionGetLiveStreams), &streams); err != nil {
		return nil, err
	}
	return streams, nil
}

// GetVODStreams retrieves all video-on-demand content.
func (c *Client) GetVODStreams(ctx context.Context) ([]VODStream, error) {
	var streams []VODStream
	if err := c.doRequest(ctx, c.apiURL(actionGetVODStreams), &streams); err != nil {
		return nil, err
	}
	return streams, nil
}

// GetSeries retrieves all series.
func (c *Client) GetSeries(ctx context.Context) ([]Series, error) {
	var series []Series
	if err := c.doRequest(ctx, c.apiURL(actionGetSeries), &series); err != nil {
		return nil, err
	}
	return series, nil
}

// GetLiveStreamURL returns the playback URL for a live channel.
func (c *Client) GetLiveStreamURL(streamID int64, extension string) string {
	if extension == "" {
		extension = defaultExtensionTS
	}
	return fmt.Sprintf("%s%s/%s/%s/%d.%s",
		c.BaseURL, pathLive, c.Username, c.Password, streamID, extension)
}

// GetVODStreamURL returns the playback URL for a VOD item. The extension
// should match the container_extension from the stream listing.
func (c *Client) GetVODStreamURL(vodID int64, extension string) string {
	if extension == "" {
		extension = defaultExtensionMP4
	}
	return fmt.Sprintf("%s%s/%s/%s/%d.%s",
		c.BaseURL, pathMovie, c.Username, c.Password, vodID, extension)
}

// GetSeriesStreamURL returns the playback URL for a series entry.
func (c *Client) GetSeriesStreamURL(seriesID int64, extension string) string {
	if extension == "" {
		extension = defaultExtensionMKV
	}
	return fmt.Sprintf("%s%s/%s/%s/%d.%s",
		c.BaseURL, pathSeries, c.Username, c.Password, seriesID, extension)
}

// FetchOptions configures a FetchAll pass.
type FetchOptions struct {
	// BatchSize overrides DefaultFetchBatchSize when positive.
	BatchSize int

	// OnBatch receives each item batch. FetchAll waits for it to return
	// before fetching further content. Required.
	OnBatch func(ctx context.Context, items []models.PlaylistItem) error

	// OnProgress receives running stats after each content type. Optional.
	OnProgress func(stats models.Stats)
}

// FetchAll retrieves the provider's live, VOD, and series catalogues,
// converts them into playlist items with resolved group names, and hands
// them to the batch sink. Items from the structured API carry their
// content type directly, so no URL classification is involved.
func (c *Client) FetchAll(ctx context.Context, opts FetchOptions) (models.Stats, error) {
	var stats models.Stats
	if opts.OnBatch == nil {
		return stats, fmt.Errorf("OnBatch callback is required")
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultFetchBatchSize
	}

	batch := make([]models.PlaylistItem, 0, batchSize)
	emit := func(item models.PlaylistItem) error {
		stats.Add(item.Category)
		batch = append(batch, item)
		if len(batch) >= batchSize {
			full := batch
			batch = make([]models.PlaylistItem, 0, batchSize)
			if err := opts.OnBatch(ctx, full); err != nil {
				return fmt.Errorf("batch sink: %w", err)
			}
		}
		return ctx.Err()
	}

	live, err := c.GetLiveStreams(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetching live streams: %w", err)
	}
	liveGroups := c.categoryNames(ctx, c.GetLiveCategories)
	for _, s := range live {
		item := models.PlaylistItem{
			Title:    s.Name,
			URL:      c.GetLiveStreamURL(s.StreamID.Int(), ""),
			Logo:     s.StreamIcon,
			Group:    groupName(liveGroups, s.CategoryID),
			Category: models.CategoryChannels,
			ExtID:    s.EPGChannelID,
		}
		if item.ExtID == "" {
			item.ExtID = strconv.FormatInt(s.StreamID.Int(), 10)
		}
		if err := emit(item); err != nil {
			return stats, err
		}
	}
	reportProgress(opts, stats)

	vod, err := c.GetVODStreams(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetching vod streams: %w", err)
	}
	vodGroups := c.categoryNames(ctx, c.GetVODCategories)
	for _, s := range vod {
		if err := emit(models.PlaylistItem{
			Title:    s.Name,
			URL:      c.GetVODStreamURL(s.StreamID.Int(), s.ContainerExtension),
			Logo:     s.StreamIcon,
			Group:    groupName(vodGroups, s.CategoryID),
			Category: models.CategoryMovies,
			ExtID:    strconv.FormatInt(s.StreamID.Int(), 10),
		}); err != nil {
			return stats, err
		}
	}
	reportProgress(opts, stats)

	series, err := c.GetSeries(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetching series: %w", err)
	}
	seriesGroups := c.categoryNames(ctx, c.GetSeriesCategories)
	for _, s := range series {
		if err := emit(models.PlaylistItem{
			Title:    s.Name,
			URL:      c.GetSeriesStreamURL(s.SeriesID.Int(), ""),
			Logo:     s.Cover,
			Group:    groupName(seriesGroups, s.CategoryID),
			Category: models.CategorySeries,
			ExtID:    strconv.FormatInt(s.SeriesID.Int(), 10),
		}); err != nil {
			return stats, err
		}
	}

	if len(batch) > 0 {
		if err := opts.OnBatch(ctx, batch); err != nil {
			return stats, fmt.Errorf("batch sink: %w", err)
		}
	}
	reportProgress(opts, stats)

	return stats, ctx.Err()
}

// categoryNames fetches a category listing and indexes names by ID.
// Category resolution is best effort: items fall back to the default
// group when the listing is unavailable.
func (c *Client) categoryNames(ctx context.Context, fetch func(context.Context) ([]ContentCategory, error)) map[string]string {
	categories, err := fetch(ctx)
	if err != nil {
		return nil
	}
	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.CategoryID.String()] = cat.CategoryName
	}
	return names
}

func groupName(names map[string]string, id FlexString) string {
	if name := names[id.String()]; name != "" {
		return name
	}
	return models.DefaultGroup
}

func reportProgress(opts FetchOptions, stats models.Stats) {
	if opts.OnProgress != nil {
		opts.OnProgress(stats)
	}
}
