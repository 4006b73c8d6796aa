package reddit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscraper/pkg/auth"
	"subscraper/pkg/config"
	"subscraper/pkg/logger"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(handler func(req *http.Request) (*http.Response, error)) *Client {
	cfg := &config.RedditConfig{
		UserAgent: "subscraper-test/0.1",
		BaseURL:   "https://oauth.example.com",
		TokenURL:  "https://www.example.com/api/v1/access_token",
		Timeout:   30 * time.Second,
	}
	c := NewClient(cfg, logger.NewTestLogger())
	c.httpClient = &http.Client{
		Transport: &mockRoundTripper{handler: handler},
		Timeout:   30 * time.Second,
	}
	return c
}

func testCreds() *auth.Credentials {
	return &auth.Credentials{
		ClientID:     "id",
		ClientSecret: "secret",
		UserAgent:    "subscraper-test/0.1",
		Username:     "user",
		Password:     "pass",
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	var captured *http.Request
	var capturedBody string

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		body, _ := io.ReadAll(req.Body)
		capturedBody = string(body)
		return newResponse(http.StatusOK, `{"access_token":"tok123","token_type":"bearer","expires_in":3600,"scope":"*"}`), nil
	})

	err := client.Authenticate(context.Background(), testCreds())
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "https://www.example.com/api/v1/access_token", captured.URL.String())

	user, pass, ok := captured.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "id", user)
	assert.Equal(t, "secret", pass)

	assert.Contains(t, capturedBody, "grant_type=password")
	assert.Contains(t, capturedBody, "username=user")
	assert.Contains(t, capturedBody, "password=pass")
	assert.Equal(t, "subscraper-test/0.1", captured.Header.Get("User-Agent"))

	assert.Equal(t, "bearer tok123", client.headers["Authorization"])
}

func TestAuthenticateNoTokenInBody(t *testing.T) {
	// Reddit answers 200 with an error body for a bad grant.
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, `{"error":"invalid_grant"}`), nil
	})

	err := client.Authenticate(context.Background(), testCreds())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrorTypeAuth, apiErr.Type)
	assert.Contains(t, apiErr.Message, "invalid_grant")
	assert.Empty(t, client.headers["Authorization"])
}

func TestAuthenticateUnauthorizedStatus(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusUnauthorized, `{}`), nil
	})

	err := client.Authenticate(context.Background(), testCreds())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrorTypeAuth, apiErr.Type)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"unauthorized", http.StatusUnauthorized, true},
		{"forbidden", http.StatusForbidden, true},
		{"server error", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "https://oauth.example.com/api/v1/me", req.URL.String())
				return newResponse(tt.status, `{}`), nil
			})

			err := client.Verify(context.Background())
			if tt.wantErr {
				var apiErr *Error
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, ErrorTypeAuth, apiErr.Type)
				assert.Equal(t, tt.status, apiErr.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func listingBody(t *testing.T, after string, names ...string) string {
	t.Helper()

	children := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		children = append(children, map[string]interface{}{
			"kind": "t3",
			"data": map[string]interface{}{
				"id":        strings.TrimPrefix(name, "t3_"),
				"name":      name,
				"title":     "title for " + name,
				"subreddit": "golang",
			},
		})
	}

	var afterValue interface{}
	if after != "" {
		afterValue = after
	}

	body, err := json.Marshal(map[string]interface{}{
		"kind": "Listing",
		"data": map[string]interface{}{
			"after":    afterValue,
			"dist":     len(children),
			"children": children,
		},
	})
	require.NoError(t, err)
	return string(body)
}

func TestFetchNewPosts(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/r/golang/new", req.URL.Path)
		assert.Equal(t, "100", req.URL.Query().Get("limit"))
		assert.Equal(t, "t3_prev", req.URL.Query().Get("after"))
		return newResponse(http.StatusOK, listingBody(t, "t3_next", "t3_a", "t3_b")), nil
	})
	client.SetHeader("Authorization", "bearer tok")

	posts, after, err := client.FetchNewPosts(context.Background(), "golang", 100, "t3_prev")
	require.NoError(t, err)

	assert.Equal(t, "t3_next", after)
	require.Len(t, posts, 2)
	assert.Equal(t, "t3_a", posts[0].ID)
	assert.Equal(t, "title for t3_a", posts[0].Title)
	assert.Equal(t, "golang", posts[0].Subreddit)
}

func TestFetchNewPostsOmitsEmptyCursor(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		_, present := req.URL.Query()["after"]
		assert.False(t, present, "first page request must not carry an after parameter")
		return newResponse(http.StatusOK, listingBody(t, "")), nil
	})

	posts, after, err := client.FetchNewPosts(context.Background(), "golang", 100, "")
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, "", after)
}

func TestFetchNewPostsNullAfterBecomesEmpty(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, `{"kind":"Listing","data":{"after":null,"children":[]}}`), nil
	})

	_, after, err := client.FetchNewPosts(context.Background(), "golang", 100, "")
	require.NoError(t, err)
	assert.Equal(t, "", after)
}

func TestFetchNewPostsUnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrong kind", `{"kind":"t2","data":{}}`},
		{"child missing fullname", `{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"title":"no name"}}]}}`},
		{"not json", `<html>blocked</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(func(req *http.Request) (*http.Response, error) {
				return newResponse(http.StatusOK, tt.body), nil
			})

			_, _, err := client.FetchNewPosts(context.Background(), "golang", 100, "")
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, ErrorTypeParsing, apiErr.Type)
		})
	}
}

func TestFetchNewPostsStatusErrors(t *testing.T) {
	tests := []struct {
		status   int
		wantType ErrorType
	}{
		{http.StatusUnauthorized, ErrorTypeAuth},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusBadGateway, ErrorTypeServerError},
		{http.StatusTeapot, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		client := newTestClient(func(req *http.Request) (*http.Response, error) {
			return newResponse(tt.status, ``), nil
		})

		_, _, err := client.FetchNewPosts(context.Background(), "golang", 100, "")
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tt.wantType, apiErr.Type)
		assert.Equal(t, tt.status, apiErr.Code)
	}
}
