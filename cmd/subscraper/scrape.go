package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"subscraper/pkg/auth"
	"subscraper/pkg/config"
	"subscraper/pkg/logger"
	"subscraper/pkg/reddit"
	"subscraper/pkg/scraper"
)

var (
	// Scrape command flags
	batches        int
	batchSize      int
	pageDelay      time.Duration
	stopOnLastPage bool
	datasetFile    string
	runLogFile     string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [subreddit]",
	Short: "Fetch new posts from a subreddit and merge them into the dataset",
	Long: `Fetch new posts from a subreddit and merge them into the local dataset.

On the first run you will be prompted for Reddit API credentials, which are
stored for subsequent runs ('subscraper auth login' stores them up front).
When no subreddit is given as an argument, you are prompted for one.

The fetch loop issues a fixed number of page requests (--batches), following
the pagination cursor, with a fixed delay between requests. By default all
requests are issued even after the listing is exhausted; --stop-on-last-page
ends the loop early once the API stops returning a cursor.`,
	Example: `  # Scrape with an interactive subreddit prompt
  subscraper scrape

  # Scrape r/golang into the default dataset
  subscraper scrape golang

  # Five pages of 50, stopping early when the listing runs out
  subscraper scrape golang --batches 5 --batch-size 50 --stop-on-last-page

  # Write somewhere else
  subscraper scrape golang --output ./data/golang.csv --run-log ./data/golang_log.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVar(&batches, "batches", 0, "number of page requests per run")
	scrapeCmd.Flags().IntVar(&batchSize, "batch-size", 0, "posts requested per page (max 100)")
	scrapeCmd.Flags().DurationVar(&pageDelay, "page-delay", -1, "delay between page requests")
	scrapeCmd.Flags().BoolVar(&stopOnLastPage, "stop-on-last-page", false, "stop fetching once the listing is exhausted")
	scrapeCmd.Flags().StringVarP(&datasetFile, "output", "o", "", "dataset file path")
	scrapeCmd.Flags().StringVar(&runLogFile, "run-log", "", "transaction log file path")
}

func runScrape(cmd *cobra.Command, args []string) error {
	flags := map[string]interface{}{
		"log-level": logLevel,
	}
	if batches > 0 {
		flags["batches"] = batches
	}
	if batchSize > 0 {
		flags["batch-size"] = batchSize
	}
	if pageDelay >= 0 {
		flags["page-delay"] = pageDelay
	}
	if cmd.Flags().Changed("stop-on-last-page") {
		flags["stop-on-last-page"] = stopOnLastPage
	}
	if datasetFile != "" {
		flags["output"] = datasetFile
	}
	if runLogFile != "" {
		flags["run-log"] = runLogFile
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	prompter := auth.NewTerminalPrompter()

	mgr := auth.NewManager(cfg.Output.CredentialsFile)
	creds, err := auth.LoadOrPrompt(mgr, prompter)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds.UserAgent != "" {
		cfg.Reddit.UserAgent = creds.UserAgent
	}

	subreddit := ""
	if len(args) == 1 {
		subreddit = args[0]
	} else {
		subreddit, err = prompter.ReadLine("Which subreddit would you like to scrape today? ")
		if err != nil {
			return fmt.Errorf("failed to read subreddit: %w", err)
		}
	}
	subreddit = reddit.SanitizeSubreddit(subreddit)
	if !reddit.IsValidSubreddit(subreddit) {
		return fmt.Errorf("invalid subreddit name: %q", subreddit)
	}

	log.WithField("subreddit", subreddit).Info("starting scrape run")

	client := reddit.NewClient(&cfg.Reddit, log)
	s := scraper.New(client, cfg, log)

	res, err := s.Run(context.Background(), creds, subreddit)
	if err != nil {
		if errors.Is(err, scraper.ErrNotAuthorized) {
			// Handled path: message and a clean exit.
			fmt.Println("Sorry, authorization not valid.")
			return nil
		}
		return fmt.Errorf("scrape failed: %w", err)
	}

	fmt.Printf("Database updated: %d posts retrieved, %d total posts to date.\n", res.Added, res.Total)

	log.InfoWithFields("scrape run complete", map[string]interface{}{
		"subreddit": subreddit,
		"batches":   res.Batches,
		"fetched":   res.Fetched,
		"added":     res.Added,
		"total":     res.Total,
	})
	return nil
}
