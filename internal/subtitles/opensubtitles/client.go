package opensubtitles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.opensubtitles.com/api/v1"
	defaultUserAgent   = "subsync/dev"
	defaultHTTPTimeout = 45 * time.Second
)

// Config describes the OpenSubtitles client configuration.
type Config struct {
	APIKey     string
	UserAgent  string
	UserToken  string
	BaseURL    string
	HTTPClient *http.Client
}

// Client wraps the OpenSubtitles REST API.
type Client struct {
	apiKey    string
	userAgent string
	userToken string
	baseURL   *url.URL
	http      *http.Client
}

// New creates a Client. An empty API key is an error.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("opensubtitles: api key is required")
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		apiKey:    apiKey,
		userAgent: userAgent,
		userToken: strings.TrimSpace(cfg.UserToken),
		baseURL:   baseURL,
		http:      client,
	}, nil
}

// SearchRequest describes subtitle discovery filters.
type SearchRequest struct {
	MovieHash       string
	IMDBID          string
	Query           string
	Year            int
	Season          int
	Episode         int
	Languages       []string
	HearingImpaired bool
}

// Subtitle represents a subtitle candidate returned by OpenSubtitles.
type Subtitle struct {
	ID              string
	FileID          int64
	FileName        string
	Language        string
	Release         string
	FeatureTitle    string
	FeatureYear     int
	Downloads       int
	HearingImpaired bool
	AITranslated    bool
	MovieHashMatch  bool
}

// SearchResponse bundles the subtitles returned by a query.
type SearchResponse struct {
	Subtitles []Subtitle
	Total     int
}

// DownloadResult captures the downloaded subtitle payload.
type DownloadResult struct {
	Data        []byte
	FileName    string
	DownloadURL string
}

// APIError reports a non-2xx response.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("opensubtitles: %s failed (http %d): %s", e.Op, e.StatusCode, e.Body)
}

// Search queries the subtitles endpoint ordered by download count.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if c == nil {
		return SearchResponse{}, errors.New("opensubtitles: client is nil")
	}
	endpoint := c.baseURL.JoinPath("subtitles")
	endpoint.RawQuery = searchParams(req).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("opensubtitles: build search request: %w", err)
	}
	c.applyHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("opensubtitles: search request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "search"); err != nil {
		return SearchResponse{}, err
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return SearchResponse{}, fmt.Errorf("opensubtitles: decode search response: %w", err)
	}

	subtitles := make([]Subtitle, 0, len(payload.Data))
	for _, entry := range payload.Data {
		attrs := entry.Attributes
		if attrs.Language == "" || len(attrs.Files) == 0 || attrs.Files[0].FileID == 0 {
			continue
		}
		subtitles = append(subtitles, Subtitle{
			ID:              entry.ID,
			FileID:          attrs.Files[0].FileID,
			FileName:        attrs.Files[0].FileName,
			Language:        attrs.Language,
			Release:         attrs.Release,
			FeatureTitle:    attrs.FeatureDetails.Title,
			FeatureYear:     attrs.FeatureDetails.Year,
			Downloads:       attrs.DownloadCount,
			HearingImpaired: attrs.HearingImpaired,
			AITranslated:    attrs.AITranslated || attrs.MachineTranslated,
			MovieHashMatch:  attrs.MovieHashMatch,
		})
	}
	return SearchResponse{Subtitles: subtitles, Total: payload.Meta.Total}, nil
}

func searchParams(req SearchRequest) url.Values {
	params := url.Values{}
	if hash := strings.ToLower(strings.TrimSpace(req.MovieHash)); hash != "" {
		params.Set("moviehash", hash)
	}
	if imdb := sanitizeIMDBID(req.IMDBID); imdb != "" {
		params.Set("imdb_id", imdb)
	}
	if query := strings.TrimSpace(req.Query); query != "" {
		params.Set("query", strings.ToLower(query))
	}
	if req.Year > 0 {
		params.Set("year", strconv.Itoa(req.Year))
	}
	if req.Season > 0 {
		params.Set("season_number", strconv.Itoa(req.Season))
	}
	if req.Episode > 0 {
		params.Set("episode_number", strconv.Itoa(req.Episode))
	}
	if len(req.Languages) > 0 {
		params.Set("languages", strings.Join(req.Languages, ","))
	}
	if req.HearingImpaired {
		params.Set("hearing_impaired", "include")
	}
	params.Set("order_by", "download_count")
	params.Set("order_direction", "desc")
	return params
}

// Download negotiates a download link for fileID and fetches the payload.
// format selects the server-side conversion ("srt" when empty).
func (c *Client) Download(ctx context.Context, fileID int64, format string) (DownloadResult, error) {
	if c == nil {
		return DownloadResult{}, errors.New("opensubtitles: client is nil")
	}
	if fileID <= 0 {
		return DownloadResult{}, errors.New("opensubtitles: invalid file id")
	}
	format = strings.TrimSpace(format)
	if format == "" {
		format = "srt"
	}
	payload, err := json.Marshal(map[string]any{"file_id": fileID, "sub_format": format})
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: encode download request: %w", err)
	}

	endpoint := c.baseURL.JoinPath("download")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: build download request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.applyHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: download request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "download negotiation"); err != nil {
		return DownloadResult{}, err
	}

	var info downloadResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: decode download response: %w", err)
	}
	if info.Link == "" {
		return DownloadResult{}, errors.New("opensubtitles: download response missing link")
	}
	link, err := endpoint.Parse(info.Link)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: parse download url: %w", err)
	}

	dataReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), nil)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: build link request: %w", err)
	}
	dataReq.Header.Set("User-Agent", c.userAgent)
	dataResp, err := c.http.Do(dataReq)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: fetch subtitle payload: %w", err)
	}
	defer dataResp.Body.Close()
	if err := checkStatus(dataResp, "subtitle fetch"); err != nil {
		return DownloadResult{}, err
	}
	data, err := io.ReadAll(dataResp.Body)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: read subtitle data: %w", err)
	}
	return DownloadResult{Data: data, FileName: info.FileName, DownloadURL: link.String()}, nil
}

// Ping verifies the API key against the lightweight formats endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("opensubtitles: client is nil")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.JoinPath("infos", "formats").String(), nil)
	if err != nil {
		return fmt.Errorf("opensubtitles: build ping request: %w", err)
	}
	c.applyHeaders(httpReq)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("opensubtitles: ping failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	return checkStatus(resp, "ping")
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.userToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.userToken)
	}
}

func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func sanitizeIMDBID(value string) string {
	value = strings.TrimPrefix(strings.TrimSpace(value), "tt")
	if value == "" {
		return ""
	}
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		return ""
	}
	return value
}

type searchResponse struct {
	Data []struct {
		ID         string           `json:"id"`
		Attributes searchAttributes `json:"attributes"`
	} `json:"data"`
	Meta struct {
		Total int `json:"total_count"`
	} `json:"meta"`
}

type searchAttributes struct {
	Language          string `json:"language"`
	Release           string `json:"release"`
	DownloadCount     int    `json:"download_count"`
	HearingImpaired   bool   `json:"hearing_impaired"`
	AITranslated      bool   `json:"ai_translated"`
	MachineTranslated bool   `json:"machine_translated"`
	MovieHashMatch    bool   `json:"moviehash_match"`
	FeatureDetails    struct {
		Title string `json:"title"`
		Year  int    `json:"year"`
	} `json:"feature_details"`
	Files []struct {
		FileID   int64  `json:"file_id"`
		FileName string `json:"file_name"`
	} `json:"files"`
}

type downloadResponse struct {
	Link     string `json:"link"`
	FileName string `json:"file_name"`
}
