package scraper

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscraper/pkg/auth"
	"subscraper/pkg/config"
	"subscraper/pkg/dataset"
	"subscraper/pkg/logger"
	"subscraper/pkg/reddit"
)

// stubClient scripts the API surface and records every fetch request.
type stubClient struct {
	authErr   error
	verifyErr error

	// pages is consumed one entry per fetch; once exhausted, further
	// fetches return an empty page with an empty cursor.
	pages []stubPage

	fetchCalls []fetchCall
}

type stubPage struct {
	posts []dataset.Post
	after string
	err   error
}

type fetchCall struct {
	subreddit string
	limit     int
	after     string
}

func (s *stubClient) Authenticate(ctx context.Context, creds *auth.Credentials) error {
	return s.authErr
}

func (s *stubClient) Verify(ctx context.Context) error {
	return s.verifyErr
}

func (s *stubClient) FetchNewPosts(ctx context.Context, subreddit string, limit int, after string) ([]dataset.Post, string, error) {
	s.fetchCalls = append(s.fetchCalls, fetchCall{subreddit: subreddit, limit: limit, after: after})
	if len(s.pages) == 0 {
		return nil, "", nil
	}
	page := s.pages[0]
	s.pages = s.pages[1:]
	return page.posts, page.after, page.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Scrape.NumBatches = 10
	cfg.Scrape.BatchSize = 100
	cfg.Scrape.PageDelay = 0 // No pacing in tests.
	cfg.Output.DatasetFile = filepath.Join(dir, "subreddit_data.csv")
	cfg.Output.RunLogFile = filepath.Join(dir, "transaction_log.txt")
	cfg.Output.CredentialsFile = filepath.Join(dir, "reddit_credentials.json")
	return cfg
}

func creds() *auth.Credentials {
	return &auth.Credentials{
		ClientID:     "id",
		ClientSecret: "secret",
		UserAgent:    "subscraper-test/0.1",
		Username:     "user",
		Password:     "pass",
	}
}

func TestRunIssuesFixedNumberOfBatches(t *testing.T) {
	// Cursor is exhausted after the first page; the loop must still issue
	// all ten requests, the later ones with an empty cursor.
	client := &stubClient{
		pages: []stubPage{
			{posts: []dataset.Post{{Title: "a", ID: "t3_a", Subreddit: "golang"}}, after: ""},
		},
	}
	cfg := testConfig(t)

	s := New(client, cfg, logger.NewTestLogger())
	res, err := s.Run(context.Background(), creds(), "golang")
	require.NoError(t, err)

	require.Len(t, client.fetchCalls, 10)
	assert.Equal(t, 10, res.Batches)
	assert.Equal(t, "", client.fetchCalls[0].after)
	for _, call := range client.fetchCalls[1:] {
		assert.Equal(t, "", call.after)
		assert.Equal(t, "golang", call.subreddit)
		assert.Equal(t, 100, call.limit)
	}
}

func TestRunThreadsCursorBetweenBatches(t *testing.T) {
	client := &stubClient{
		pages: []stubPage{
			{posts: []dataset.Post{{Title: "a", ID: "t3_a", Subreddit: "golang"}}, after: "t3_a"},
			{posts: []dataset.Post{{Title: "b", ID: "t3_b", Subreddit: "golang"}}, after: "t3_b"},
			{posts: []dataset.Post{{Title: "c", ID: "t3_c", Subreddit: "golang"}}, after: "t3_c"},
		},
	}
	cfg := testConfig(t)
	cfg.Scrape.NumBatches = 3

	s := New(client, cfg, logger.NewTestLogger())
	res, err := s.Run(context.Background(), creds(), "golang")
	require.NoError(t, err)

	require.Len(t, client.fetchCalls, 3)
	assert.Equal(t, "", client.fetchCalls[0].after)
	assert.Equal(t, "t3_a", client.fetchCalls[1].after)
	assert.Equal(t, "t3_b", client.fetchCalls[2].after)
	assert.Equal(t, 3, res.Fetched)
}

func TestRunStopOnLastPage(t *testing.T) {
	client := &stubClient{
		pages: []stubPage{
			{posts: []dataset.Post{{Title: "a", ID: "t3_a", Subreddit: "golang"}}, after: ""},
		},
	}
	cfg := testConfig(t)
	cfg.Scrape.StopOnLastPage = true

	s := New(client, cfg, logger.NewTestLogger())
	res, err := s.Run(context.Background(), creds(), "golang")
	require.NoError(t, err)

	assert.Len(t, client.fetchCalls, 1)
	assert.Equal(t, 1, res.Batches)
}

func TestRunEmptyDatasetScenario(t *testing.T) {
	// Empty initial dataset, one page of three records: the dataset ends
	// up with 3 rows and the run log reports Retrieved 0, Total 3.
	client := &stubClient{
		pages: []stubPage{
			{posts: []dataset.Post{
				{Title: "a", ID: "t3_a", Subreddit: "golang"},
				{Title: "b", ID: "t3_b", Subreddit: "golang"},
				{Title: "c", ID: "t3_c", Subreddit: "golang"},
			}, after: ""},
		},
	}
	cfg := testConfig(t)
	cfg.Scrape.NumBatches = 1

	s := New(client, cfg, logger.NewTestLogger())
	res, err := s.Run(context.Background(), creds(), "golang")
	require.NoError(t, err)

	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 3, res.Total)

	rows, err := dataset.Load(cfg.Output.DatasetFile)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	logRaw, err := os.ReadFile(cfg.Output.RunLogFile)
	require.NoError(t, err)
	assert.Contains(t, string(logRaw), "Posts Retrieved: 0 | Total Posts To Date: 3")
}

func TestRunVerifyFailureTouchesNothing(t *testing.T) {
	client := &stubClient{
		verifyErr: &reddit.Error{Type: reddit.ErrorTypeAuth, Message: "identity check failed", Code: http.StatusUnauthorized},
	}
	cfg := testConfig(t)

	s := New(client, cfg, logger.NewTestLogger())
	_, err := s.Run(context.Background(), creds(), "golang")
	require.ErrorIs(t, err, ErrNotAuthorized)

	assert.Empty(t, client.fetchCalls)

	_, statErr := os.Stat(cfg.Output.DatasetFile)
	assert.True(t, os.IsNotExist(statErr), "dataset must not be created")
	_, statErr = os.Stat(cfg.Output.RunLogFile)
	assert.True(t, os.IsNotExist(statErr), "run log must not be created")
}

func TestRunVerifyNetworkErrorPropagates(t *testing.T) {
	netErr := &reddit.Error{Type: reddit.ErrorTypeNetwork, Message: "connection refused"}
	client := &stubClient{verifyErr: netErr}
	cfg := testConfig(t)

	s := New(client, cfg, logger.NewTestLogger())
	_, err := s.Run(context.Background(), creds(), "golang")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAuthorized)
}

func TestRunAuthenticateFailurePropagates(t *testing.T) {
	authErr := &reddit.Error{Type: reddit.ErrorTypeAuth, Message: "no access token in response", Code: http.StatusOK}
	client := &stubClient{authErr: authErr}
	cfg := testConfig(t)

	s := New(client, cfg, logger.NewTestLogger())
	_, err := s.Run(context.Background(), creds(), "golang")
	require.Error(t, err)

	var apiErr *reddit.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, reddit.ErrorTypeAuth, apiErr.Type)
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	client := &stubClient{
		pages: []stubPage{
			{posts: []dataset.Post{{Title: "a", ID: "t3_a", Subreddit: "golang"}}, after: "t3_a"},
			{err: &reddit.Error{Type: reddit.ErrorTypeServerError, Message: "server error", Code: 502}},
		},
	}
	cfg := testConfig(t)

	s := New(client, cfg, logger.NewTestLogger())
	_, err := s.Run(context.Background(), creds(), "golang")
	require.Error(t, err)

	// Fail fast: nothing persisted from the partial run.
	_, statErr := os.Stat(cfg.Output.DatasetFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunMergesAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scrape.NumBatches = 1

	first := &stubClient{
		pages: []stubPage{
			{posts: []dataset.Post{
				{Title: "a", ID: "t3_a", Subreddit: "golang"},
				{Title: "b", ID: "t3_b", Subreddit: "golang"},
			}},
		},
	}
	_, err := New(first, cfg, logger.NewTestLogger()).Run(context.Background(), creds(), "golang")
	require.NoError(t, err)

	second := &stubClient{
		pages: []stubPage{
			{posts: []dataset.Post{
				{Title: "a", ID: "t3_a", Subreddit: "golang"},
				{Title: "c", ID: "t3_c", Subreddit: "golang"},
			}},
		},
	}
	res, err := New(second, cfg, logger.NewTestLogger()).Run(context.Background(), creds(), "golang")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Added)

	rows, err := dataset.Load(cfg.Output.DatasetFile)
	require.NoError(t, err)
	assert.Equal(t, []dataset.Post{
		{Title: "a", ID: "t3_a", Subreddit: "golang"},
		{Title: "b", ID: "t3_b", Subreddit: "golang"},
		{Title: "c", ID: "t3_c", Subreddit: "golang"},
	}, rows)

	logRaw, err := os.ReadFile(cfg.Output.RunLogFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(logRaw), "\n"), "\n")
	assert.Len(t, lines, 4) // two header lines + one entry per run
}

func TestRunRespectsContextCancellation(t *testing.T) {
	client := &stubClient{}
	cfg := testConfig(t)
	cfg.Scrape.PageDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(client, cfg, logger.NewTestLogger())
	_, err := s.Run(ctx, creds(), "golang")
	require.Error(t, err)
}
