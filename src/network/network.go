package network

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"
)

// -----------------------------------------------------------------------------
// NetworkManager is the REST side of the remote service: snapshot seeds and
// control-state writes. Reads retry with a growing pause; writes go out
// exactly once because the autosave layer owns the failure policy.
// -----------------------------------------------------------------------------

type NetworkManager struct {
	baseURL    string
	apiKey     string
	maxRetries int
	Client     *http.Client
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

func NewNetworkManager(cfg *models.MRemoteConfig, log *logger.Logger) *NetworkManager {
	return &NetworkManager{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		Client: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request against the remote service with retries.
func (nm *NetworkManager) Get(path string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(nm.baseURL + path)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	finalUrl := reqUrl.String()

	var lastErr error
	for i := 0; i <= nm.maxRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(i*i) * time.Second) // Exponential backoff
		}

		req, err := http.NewRequest("GET", finalUrl, nil)
		if err != nil {
			return nil, err
		}
		nm.setHeaders(req)

		resp, err := nm.Client.Do(req)
		if err != nil {
			lastErr = err
			nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, nm.maxRetries+1, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == 401 || resp.StatusCode == 403 {
			// Bad credentials never fix themselves.
			return nil, fmt.Errorf("authentication rejected (status %d)", resp.StatusCode)
		}
		if resp.StatusCode != 200 {
			lastErr = fmt.Errorf("bad status: %d", resp.StatusCode)
			nm.Logger.Info("Bad status %d from %s", resp.StatusCode, path)
			continue
		}
		if readErr != nil {
			lastErr = readErr
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %v", lastErr)
}

// -----------------------------------------------------------------------------

// Post sends a JSON body to the remote service. No retries: the caller
// decides what a failed write means.
func (nm *NetworkManager) Post(path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest("POST", nm.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	nm.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("bad status %d from %s", resp.StatusCode, path)
	}

	return respBody, nil
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

func (nm *NetworkManager) setHeaders(req *http.Request) {
	if nm.apiKey != "" {
		req.Header.Set("X-API-Key", nm.apiKey)
	}
	req.Header.Set("User-Agent", "dashboard-sync")
}
