// Package reddit provides a client for the Reddit OAuth API: password-grant
// authentication, identity verification and paginated listing retrieval.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"subscraper/pkg/auth"
	"subscraper/pkg/config"
	"subscraper/pkg/dataset"
	"subscraper/pkg/logger"
)

// ErrorType classifies API errors.
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a Reddit API error with type information.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("reddit %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Client is an authenticated Reddit API client.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	tokenURL   string
	logger     logger.Logger
}

// NewClient creates a Reddit API client from the given configuration.
func NewClient(cfg *config.RedditConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		headers: map[string]string{
			"User-Agent": cfg.UserAgent,
		},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		tokenURL: cfg.TokenURL,
		logger:   log,
	}
}

// SetHeader sets a custom header for the client.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Authenticate performs the OAuth2 password-grant token exchange: HTTP
// Basic auth with the client ID and secret, the username and password in
// the form body. On success the bearer token is attached to every
// subsequent request. A 200 response without an access token is an auth
// error, not a parsing one: the API answers 200 with an error body for bad
// grants.
func (c *Client) Authenticate(ctx context.Context, creds *auth.Credentials) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to create token request: %v", err)}
	}
	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read token response: %v", err),
			Code:    resp.StatusCode,
		}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return &Error{
			Type:    ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse token response: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if token.AccessToken == "" {
		msg := "no access token in response"
		if token.Error != "" {
			msg = fmt.Sprintf("token exchange rejected: %s", token.Error)
		}
		c.logger.WarnWithFields("token exchange returned no usable token", map[string]interface{}{
			"status": resp.StatusCode,
			"error":  token.Error,
		})
		return &Error{Type: ErrorTypeAuth, Message: msg, Code: resp.StatusCode}
	}

	c.headers["Authorization"] = "bearer " + token.AccessToken

	c.logger.DebugWithFields("token exchange succeeded", map[string]interface{}{
		"token_type": token.TokenType,
		"expires_in": token.ExpiresIn,
		"scope":      token.Scope,
	})
	return nil
}

// Verify issues the authenticated identity check. It returns nil only when
// the API answers HTTP 200.
func (c *Client) Verify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, MeURL(c.baseURL), nil)
	if err != nil {
		return &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnWithFields("identity check failed", map[string]interface{}{
			"status": resp.StatusCode,
		})
		return &Error{
			Type:    ErrorTypeAuth,
			Message: "identity check failed",
			Code:    resp.StatusCode,
		}
	}
	return nil
}

// FetchNewPosts retrieves one page of a subreddit's new-post listing and
// returns the extracted records along with the next pagination cursor. An
// empty cursor means the API reported no further pages. A response missing
// the expected structure fails the whole call; there is no partial-record
// tolerance.
func (c *Client) FetchNewPosts(ctx context.Context, subreddit string, limit int, after string) ([]dataset.Post, string, error) {
	listingURL := NewPostsURL(c.baseURL, subreddit, limit, after)

	c.logger.DebugWithFields("fetching listing page", map[string]interface{}{
		"subreddit": subreddit,
		"after":     after,
		"url":       listingURL,
	})

	var listing Listing
	if err := c.getJSON(ctx, listingURL, &listing); err != nil {
		return nil, "", err
	}

	if listing.Kind != "Listing" {
		return nil, "", &Error{
			Type:    ErrorTypeParsing,
			Message: fmt.Sprintf("unexpected response kind %q", listing.Kind),
		}
	}

	posts := make([]dataset.Post, 0, len(listing.Data.Children))
	for i, child := range listing.Data.Children {
		d := child.Data
		if d.Name == "" {
			return nil, "", &Error{
				Type:    ErrorTypeParsing,
				Message: fmt.Sprintf("listing child %d is missing its fullname", i),
			}
		}
		posts = append(posts, dataset.Post{
			Title:     d.Title,
			ID:        d.Name,
			Subreddit: d.Subreddit,
		})
	}

	c.logger.DebugWithFields("listing page fetched", map[string]interface{}{
		"subreddit": subreddit,
		"count":     len(posts),
		"next":      listing.Data.After,
	})

	return posts, listing.Data.After, nil
}

// getJSON performs a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, reqURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          reqURL,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &Error{
			Type:    ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// doRequest performs an HTTP request with the configured headers.
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		// The token exchange sets its own auth header.
		if key == "Authorization" && req.Header.Get("Authorization") != "" {
			continue
		}
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus maps HTTP status codes onto the error taxonomy.
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{
			Type:    ErrorTypeAuth,
			Message: "authentication required",
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		return &Error{
			Type:    ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		return &Error{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &Error{
			Type:    ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		if resp.StatusCode >= 400 {
			return &Error{
				Type:    ErrorTypeUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}
}
