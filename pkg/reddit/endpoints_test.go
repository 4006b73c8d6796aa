package reddit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPostsURL(t *testing.T) {
	got := NewPostsURL("https://oauth.reddit.com", "golang", 100, "")
	assert.Equal(t, "https://oauth.reddit.com/r/golang/new?limit=100", got)

	got = NewPostsURL("https://oauth.reddit.com/", "golang", 25, "t3_abc")
	assert.Equal(t, "https://oauth.reddit.com/r/golang/new?after=t3_abc&limit=25", got)
}

func TestNewPostsURLClampsLimit(t *testing.T) {
	got := NewPostsURL("https://oauth.reddit.com", "golang", 0, "")
	assert.Contains(t, got, "limit=100")

	got = NewPostsURL("https://oauth.reddit.com", "golang", 500, "")
	assert.Contains(t, got, "limit=100")
}

func TestMeURL(t *testing.T) {
	assert.Equal(t, "https://oauth.reddit.com/api/v1/me", MeURL("https://oauth.reddit.com"))
	assert.Equal(t, "https://oauth.reddit.com/api/v1/me", MeURL("https://oauth.reddit.com/"))
}

func TestIsValidSubreddit(t *testing.T) {
	valid := []string{"golang", "AskReddit", "data_science", "abc"}
	for _, name := range valid {
		assert.True(t, IsValidSubreddit(name), name)
	}

	invalid := []string{"", "ab", "has space", "r/golang", "way_too_long_subreddit_name"}
	for _, name := range invalid {
		assert.False(t, IsValidSubreddit(name), name)
	}
}

func TestSanitizeSubreddit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"golang", "golang"},
		{" golang ", "golang"},
		{"r/golang", "golang"},
		{"/r/golang/", "golang"},
		{"golang/", "golang"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeSubreddit(tt.in), tt.in)
	}
}
