package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reporter/src/utils"
)

// ExternalAPIService is a token-authenticated HTTP client for a remote
// API using client-credential auth. Tokens are cached in memory and
// refreshed shortly before they expire.
type ExternalAPIService struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Client       *http.Client

	tokenCache *utils.Cache[string]
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// NewExternalAPIService creates a new instance of ExternalAPIService
func NewExternalAPIService(baseURL, tokenURL, clientID, clientSecret string) *ExternalAPIService {
	return &ExternalAPIService{
		BaseURL:      baseURL,
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Client:       &http.Client{Timeout: 60 * time.Second},
		tokenCache:   utils.NewCache[string](),
	}
}

// Token returns a valid bearer token, requesting a new one when the
// cached token has expired.
func (s *ExternalAPIService) Token(ctx context.Context) (string, error) {
	if token, ok := s.tokenCache.Get(time.Time{}); ok {
		return token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.ClientID)
	form.Set("client_secret", s.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", utils.NewHTTPError(resp.StatusCode, "token request failed: "+resp.Status)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}

	// Refresh one minute early so in-flight requests never race expiry.
	ttl := time.Duration(tr.ExpiresIn)*time.Second - time.Minute
	if ttl < time.Minute {
		ttl = time.Minute
	}
	s.tokenCache.Set(tr.AccessToken, ttl)

	return tr.AccessToken, nil
}

// makeRequest is a helper function to make HTTP requests, supporting optional query parameters
func (s *ExternalAPIService) makeRequest(ctx context.Context, method, endpoint string, params url.Values, body interface{}) (*http.Response, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}

	requestURL := s.BaseURL + endpoint
	if params != nil {
		requestURL = requestURL + "?" + params.Encode()
	}

	var jsonBody []byte
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode > http.StatusCreated {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, utils.NewHTTPError(resp.StatusCode, resp.Status+": "+string(msg))
	}
	return resp, nil
}

// Get makes a GET request to the external service, accepting optional query parameters
func (s *ExternalAPIService) Get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	return s.makeRequest(ctx, http.MethodGet, endpoint, params, nil)
}

// Post makes a POST request to the external service
func (s *ExternalAPIService) Post(ctx context.Context, endpoint string, body interface{}) (*http.Response, error) {
	return s.makeRequest(ctx, http.MethodPost, endpoint, nil, body)
}

// GetRaw fetches an absolute URL with the bearer token and returns the
// raw response body. Used for export archive downloads, which are
// served from a handle outside the API base path.
func (s *ExternalAPIService) GetRaw(ctx context.Context, rawURL string) ([]byte, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, utils.NewHTTPError(resp.StatusCode, "download failed: "+resp.Status)
	}

	return io.ReadAll(resp.Body)
}
