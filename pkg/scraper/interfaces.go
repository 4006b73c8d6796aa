package scraper

import (
	"context"

	"subscraper/pkg/auth"
	"subscraper/pkg/dataset"
)

// Client is the API surface the scraper needs from the Reddit client.
type Client interface {
	// Authenticate performs the password-grant token exchange.
	Authenticate(ctx context.Context, creds *auth.Credentials) error

	// Verify issues the authenticated identity check; nil only on HTTP 200.
	Verify(ctx context.Context) error

	// FetchNewPosts retrieves one listing page and the next cursor. An
	// empty cursor means the API reported no further pages.
	FetchNewPosts(ctx context.Context, subreddit string, limit int, after string) ([]dataset.Post, string, error)
}
