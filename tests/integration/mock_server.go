package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
)

// MockRedditServer simulates the two Reddit hosts the scraper talks to: the
// www host for the token exchange and the oauth host for everything else.
// Both are served from the same httptest server.
type MockRedditServer struct {
	server         *httptest.Server
	requestCount   int32
	tokenRequests  int32
	errorResponses map[string]int // endpoint pattern -> status code
	mu             sync.RWMutex

	// pages maps subreddit -> ordered listing pages. A request with no
	// "after" parameter serves page 0; a request with after equal to a
	// page's cursor serves the following page.
	pages map[string][]ListingPage

	// cursors records the "after" value of each listing request, in order.
	cursors []string

	validToken string
}

// ListingPage is one page of a subreddit listing: the posts it contains and
// the cursor it hands back. An empty After marks the final page.
type ListingPage struct {
	After string
	Posts []MockPost
}

// MockPost is one post in a mock listing.
type MockPost struct {
	Name      string
	Title     string
	Subreddit string
}

// NewMockRedditServer creates a mock Reddit API server.
func NewMockRedditServer() *MockRedditServer {
	m := &MockRedditServer{
		errorResponses: make(map[string]int),
		pages:          make(map[string][]ListingPage),
		validToken:     "integration-test-token",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", m.handleToken)
	mux.HandleFunc("/api/v1/me", m.handleMe)
	mux.HandleFunc("/r/", m.handleListing)

	m.server = httptest.NewServer(mux)
	return m
}

// SetPages configures the listing pages returned for a subreddit.
func (m *MockRedditServer) SetPages(subreddit string, pages []ListingPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[subreddit] = pages
}

// SetErrorResponse configures an endpoint to return a specific status code.
// Recognized endpoints: "token", "me", "listing".
func (m *MockRedditServer) SetErrorResponse(endpoint string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorResponses[endpoint] = code
}

func (m *MockRedditServer) getErrorResponse(endpoint string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errorResponses[endpoint]
}

func (m *MockRedditServer) handleToken(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)
	atomic.AddInt32(&m.tokenRequests, 1)

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if code := m.getErrorResponse("token"); code > 0 {
		w.WriteHeader(code)
		return
	}

	if _, _, ok := r.BasicAuth(); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil || r.PostFormValue("grant_type") != "password" {
		// Reddit answers bad grants with a 200 and an error body.
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"error": "unsupported_grant_type"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token": m.validToken,
		"token_type":   "bearer",
		"expires_in":   3600,
		"scope":        "*",
	})
}

func (m *MockRedditServer) handleMe(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	if code := m.getErrorResponse("me"); code > 0 {
		w.WriteHeader(code)
		return
	}

	if r.Header.Get("Authorization") != "bearer "+m.validToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"name": "testuser",
		"id":   "t2_abc123",
	})
}

func (m *MockRedditServer) handleListing(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	if code := m.getErrorResponse("listing"); code > 0 {
		w.WriteHeader(code)
		return
	}

	if r.Header.Get("Authorization") != "bearer "+m.validToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	// Path shape: /r/{subreddit}/new
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] != "new" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	subreddit := parts[1]

	after := r.URL.Query().Get("after")

	m.mu.Lock()
	m.cursors = append(m.cursors, after)
	pages := m.pages[subreddit]
	m.mu.Unlock()

	if pages == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	page := pages[0]
	if after != "" {
		for i, p := range pages {
			if p.After == after && i+1 < len(pages) {
				page = pages[i+1]
				break
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listingBody(subreddit, page))
}

func listingBody(subreddit string, page ListingPage) map[string]interface{} {
	children := make([]map[string]interface{}, 0, len(page.Posts))
	for _, p := range page.Posts {
		children = append(children, map[string]interface{}{
			"kind": "t3",
			"data": map[string]interface{}{
				"id":        strings.TrimPrefix(p.Name, "t3_"),
				"name":      p.Name,
				"title":     p.Title,
				"subreddit": p.Subreddit,
			},
		})
	}

	var afterField interface{}
	if page.After != "" {
		afterField = page.After
	}

	return map[string]interface{}{
		"kind": "Listing",
		"data": map[string]interface{}{
			"after":    afterField,
			"dist":     len(children),
			"children": children,
		},
	}
}

// URL returns the base URL of the mock server.
func (m *MockRedditServer) URL() string {
	return m.server.URL
}

// TokenURL returns the full token-exchange URL.
func (m *MockRedditServer) TokenURL() string {
	return fmt.Sprintf("%s/api/v1/access_token", m.server.URL)
}

// RequestCount returns the total number of requests served.
func (m *MockRedditServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// TokenRequests returns the number of token-exchange requests served.
func (m *MockRedditServer) TokenRequests() int {
	return int(atomic.LoadInt32(&m.tokenRequests))
}

// ListingCursors returns the "after" parameter of every listing request, in
// the order the requests arrived.
func (m *MockRedditServer) ListingCursors() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.cursors))
	copy(out, m.cursors)
	return out
}

// Close shuts down the mock server.
func (m *MockRedditServer) Close() {
	m.server.Close()
}
