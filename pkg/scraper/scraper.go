// Package scraper sequences one scraping run: authenticate, verify,
// paginated fetch, merge into the persisted dataset, append the run log.
package scraper

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"subscraper/pkg/auth"
	"subscraper/pkg/config"
	"subscraper/pkg/dataset"
	"subscraper/pkg/logger"
	"subscraper/pkg/reddit"
	"subscraper/pkg/runlog"
)

// ErrNotAuthorized is returned when the identity check fails. The caller
// prints a message and exits without error signaling; no dataset or run log
// write happens before verification passes.
var ErrNotAuthorized = errors.New("authorization not valid")

// Result summarizes one completed run.
type Result struct {
	// Fetched is the number of records retrieved across all batches,
	// before deduplication.
	Fetched int

	// Batches is the number of page requests issued.
	Batches int

	// Added is the run-log figure: dataset total minus the incoming batch
	// size. See dataset.MergeAndSave for why this is not a true new-row
	// count.
	Added int

	// Total is the dataset row count after the merge.
	Total int
}

// Scraper runs the fetch-merge-log pipeline. Strictly sequential: one page
// request at a time, paced by a limiter.
type Scraper struct {
	client  Client
	cfg     *config.Config
	limiter *rate.Limiter
	logger  logger.Logger
	now     func() time.Time
}

// New creates a Scraper. The limiter spaces page requests PageDelay apart;
// the first request is not delayed.
func New(client Client, cfg *config.Config, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	limit := rate.Inf
	if cfg.Scrape.PageDelay > 0 {
		limit = rate.Every(cfg.Scrape.PageDelay)
	}

	return &Scraper{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log,
		now:     time.Now,
	}
}

// Run executes one full scraping run for the given subreddit.
//
// The fetch loop issues exactly cfg.Scrape.NumBatches page requests,
// threading the cursor from each response into the next request. By default
// the loop does not stop when the cursor comes back empty: the remaining
// requests are still issued with no cursor, repeating the first page. That
// matches the historical request count; set StopOnLastPage to end the loop
// early instead.
func (s *Scraper) Run(ctx context.Context, creds *auth.Credentials, subreddit string) (*Result, error) {
	log := s.logger.WithField("subreddit", subreddit)

	if err := s.client.Authenticate(ctx, creds); err != nil {
		return nil, err
	}
	log.Debug("authenticated")

	if err := s.client.Verify(ctx); err != nil {
		var apiErr *reddit.Error
		if errors.As(err, &apiErr) && apiErr.Type != reddit.ErrorTypeNetwork {
			log.WithField("status", apiErr.Code).Warn("identity check rejected")
			return nil, ErrNotAuthorized
		}
		return nil, err
	}
	log.Debug("identity verified")

	var all []dataset.Post
	after := ""
	batches := 0

	for i := 0; i < s.cfg.Scrape.NumBatches; i++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		posts, next, err := s.client.FetchNewPosts(ctx, subreddit, s.cfg.Scrape.BatchSize, after)
		if err != nil {
			return nil, err
		}

		all = append(all, posts...)
		after = next
		batches++

		log.DebugWithFields("batch fetched", map[string]interface{}{
			"batch": batches,
			"count": len(posts),
			"after": next,
		})

		if s.cfg.Scrape.StopOnLastPage && next == "" {
			log.InfoWithFields("listing exhausted, stopping early", map[string]interface{}{
				"batches": batches,
			})
			break
		}
	}

	added, total, err := dataset.MergeAndSave(s.cfg.Output.DatasetFile, all)
	if err != nil {
		return nil, err
	}

	log.InfoWithFields("dataset updated", map[string]interface{}{
		"fetched": len(all),
		"added":   added,
		"total":   total,
	})

	// The run log is advisory; a failed append must not fail a run whose
	// dataset merge already succeeded.
	appender := &runlog.Appender{Path: s.cfg.Output.RunLogFile}
	if err := appender.Append(added, total, s.now()); err != nil {
		log.WithError(err).Error("failed to update run log")
	}

	return &Result{
		Fetched: len(all),
		Batches: batches,
		Added:   added,
		Total:   total,
	}, nil
}
