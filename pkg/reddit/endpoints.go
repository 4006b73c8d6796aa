package reddit

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the authenticated Reddit API host.
	DefaultBaseURL = "https://oauth.reddit.com"

	// DefaultTokenURL is the OAuth2 token-exchange endpoint.
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"

	// MeEndpoint is the identity-check path, relative to the base URL.
	MeEndpoint = "/api/v1/me"

	// MaxListingLimit is the largest page size Reddit accepts.
	MaxListingLimit = 100
)

// subredditNameRe matches valid subreddit names.
var subredditNameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,21}$`)

// NewPostsURL constructs the URL for one page of a subreddit's new-post
// listing. An empty cursor omits the after parameter, matching the first
// request of a run.
func NewPostsURL(baseURL, subreddit string, limit int, after string) string {
	if limit <= 0 || limit > MaxListingLimit {
		limit = MaxListingLimit
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if after != "" {
		params.Set("after", after)
	}

	return fmt.Sprintf("%s/r/%s/new?%s", strings.TrimRight(baseURL, "/"), subreddit, params.Encode())
}

// MeURL constructs the identity-check URL.
func MeURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + MeEndpoint
}

// IsValidSubreddit reports whether the name is a well-formed subreddit name.
func IsValidSubreddit(name string) bool {
	return subredditNameRe.MatchString(name)
}

// SanitizeSubreddit strips decorations people paste in: an "r/" or "/r/"
// prefix, surrounding whitespace and trailing slashes.
func SanitizeSubreddit(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "r/")
	name = strings.TrimRight(name, "/")
	return name
}
