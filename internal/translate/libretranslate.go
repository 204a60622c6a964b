package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LibreTranslate talks to a LibreTranslate server's /translate endpoint.
type LibreTranslate struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewLibreTranslate constructs a client for the server at baseURL.
func NewLibreTranslate(baseURL, apiKey string, timeout time.Duration, httpClient *http.Client) *LibreTranslate {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &LibreTranslate{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate sends text with automatic source detection.
func (l *LibreTranslate) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", errors.New("libretranslate: target language required")
	}
	endpoint, err := url.JoinPath(l.baseURL, "translate")
	if err != nil {
		return "", fmt.Errorf("libretranslate: build url: %w", err)
	}
	body, err := json.Marshal(libreRequest{Q: text, Source: "auto", Target: target, Format: "text", APIKey: l.apiKey})
	if err != nil {
		return "", fmt.Errorf("libretranslate: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("libretranslate: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("libretranslate: request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("libretranslate: read body: %w", err)
	}

	var payload libreResponse
	decodeErr := json.Unmarshal(data, &payload)
	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(payload.Error)
		if message == "" {
			message = strings.TrimSpace(string(data))
		}
		return "", fmt.Errorf("libretranslate: http %d: %s", resp.StatusCode, message)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("libretranslate: decode response: %w", decodeErr)
	}
	translated := strings.TrimSpace(payload.TranslatedText)
	if translated == "" {
		return "", errors.New("libretranslate: empty translation")
	}
	return translated, nil
}

// HealthCheck lists the server's languages.
func (l *LibreTranslate) HealthCheck(ctx context.Context) error {
	endpoint, err := url.JoinPath(l.baseURL, "languages")
	if err != nil {
		return fmt.Errorf("libretranslate health: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("libretranslate health: new request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("libretranslate health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("libretranslate health: http %d", resp.StatusCode)
	}
	return nil
}
