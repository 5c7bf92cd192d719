package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"serpscout/internal/batch"
	"serpscout/internal/config"
	"serpscout/internal/formatter"
	"serpscout/internal/logging"
	"serpscout/internal/scraper"
	_ "serpscout/internal/sites/bing"
	_ "serpscout/internal/sites/duckduckgo"
	generic "serpscout/internal/sites/generic"
	_ "serpscout/internal/sites/google"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	outputFormat string
	outputFile   string
	timeout      time.Duration
	level        string
	selector     string
	site         string
	maxResults   int
	showUI       bool
	proxyURL     string
	noExpand     bool
	screenshot   string
	configFile   string
	batchFile    string
	concurrency  int
	logLevel     string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:     "serpscout [QUERY|URL]",
		Short:   "Search-result and page extraction with a real browser",
		Version: version,
		Long: `serpscout drives a Chrome session against search engines and returns
organic results, the AI summary panel and official-site lookups. Blocked or
empty pages are retried under a different device profile. Without --site the
argument is treated as a URL and its rendered content is extracted.`,
		Example: `  # Organic results from Google
  serpscout --site google "phoenix mall" -n 10

  # Official website of an organization
  serpscout --site google.official "Example Center" -f json

  # Summary panel plus results, without clicking "show more"
  serpscout --site google.overview --no-expand "what is a shopping mall"

  # Bing and DuckDuckGo
  serpscout --site bing "golang tutorial" -f markdown
  serpscout --site duckduckgo "golang tutorial"

  # Many queries, two at a time, saved as CSV
  serpscout --site google.official --batch malls.txt --concurrency 2 -o sites.csv

  # Main article of a page
  serpscout -l content -f markdown https://go.dev/blog/`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && batchFile == "" {
				cmd.Help()
				os.Exit(0)
			}
			return cobra.MaximumNArgs(1)(cmd, args)
		},
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format ("+strings.Join(formatter.Formats, ", ")+")")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (format inferred from extension if -f not specified)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Page load timeout")
	rootCmd.Flags().StringVarP(&level, "level", "l", "body", "Content extraction level for URLs (full, body, content, css)")
	rootCmd.Flags().StringVarP(&selector, "selector", "s", "", "Selector for css level")
	rootCmd.Flags().StringVar(&site, "site", "", "Search mode: "+strings.Join(searchSites(), ", "))
	rootCmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "Maximum results per query (default from config, 20)")
	rootCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", os.Getenv("SERPSCOUT_PROXY"), "Proxy URL (e.g. http://127.0.0.1:7890), defaults to SERPSCOUT_PROXY env var")
	rootCmd.Flags().BoolVar(&noExpand, "no-expand", false, "Do not click \"show more\" on the summary panel")
	rootCmd.Flags().StringVar(&screenshot, "screenshot", "", "Screenshot path written when a search finds nothing")
	rootCmd.Flags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.Flags().StringVar(&batchFile, "batch", "", "File with one query per line")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Queries in flight during --batch (default from config, 1)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	return rootCmd
}

func searchSites() []string {
	var names []string
	for _, n := range scraper.Names() {
		if n != "generic" {
			names = append(names, n)
		}
	}
	return names
}

func run(cmd *cobra.Command, args []string) error {
	// If output file is specified but format is not, infer format from file extension
	if outputFile != "" && !cmd.Flags().Changed("format") {
		if inferred := formatter.FromExtension(outputFile); inferred != "" {
			outputFormat = inferred
		}
	}

	if err := validateFlags(); err != nil {
		return err
	}

	settings, err := config.Load(configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, settings)

	logger := logging.New(os.Stderr, settings.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.WithContext(ctx)

	opts := scraper.Options{
		Config:     settings,
		MaxResults: maxResults,
		Expand:     !noExpand,
		Level:      level,
		Selector:   selector,
	}

	var content scraper.Content
	switch {
	case batchFile != "":
		content, err = runBatch(ctx, settings, opts)
	case site != "":
		content, err = runSite(ctx, args[0], opts)
	default:
		content, err = runGeneric(ctx, generic.NewGenericScraper(nil), normalizeURL(args[0]), proxyURL, opts)
	}
	if err != nil {
		return err
	}

	// Format output
	outputContent, err := formatter.Format(content, outputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Output result
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(outputContent), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Output written to: %s\n", outputFile)
	} else {
		fmt.Println(outputContent)
	}
	return nil
}

// applyFlags overlays explicitly set flags on the loaded config.
func applyFlags(cmd *cobra.Command, settings *config.Config) {
	if cmd.Flags().Changed("showui") {
		settings.Browser.Headless = !showUI
	}
	if cmd.Flags().Changed("timeout") {
		settings.Browser.PageLoadTimeout = timeout
	}
	if site != "" && proxyURL != "" {
		settings.Browser.ProxyURL = proxyURL
	}
	if maxResults > 0 {
		settings.Search.MaxResults = maxResults
	}
	if screenshot != "" {
		settings.Search.ScreenshotPath = screenshot
	}
	if concurrency > 0 {
		settings.Batch.Concurrency = concurrency
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}
}

func runSite(ctx context.Context, query string, opts scraper.Options) (scraper.Content, error) {
	s, ok := scraper.Get(site)
	if !ok {
		return nil, fmt.Errorf("unknown site: %s", site)
	}
	content, err := s.Scrape(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape: %w", err)
	}
	return content, nil
}

// runGeneric fetches directly first and, when a proxy is known from the
// flag or the config, retries once through it.
func runGeneric(ctx context.Context, gs scraper.Scraper, target, proxy string, opts scraper.Options) (scraper.Content, error) {
	log := zerolog.Ctx(ctx)
	settings := opts.Settings()
	if proxy == "" {
		proxy = settings.Browser.ProxyURL
	}

	direct := *settings
	direct.Browser.ProxyURL = ""
	opts.Config = &direct
	content, err := gs.Scrape(ctx, target, opts)
	if err == nil {
		return content, nil
	}
	if proxy == "" {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	log.Warn().Err(err).Str("proxy", proxy).Msg("first attempt failed, retrying with proxy")
	withProxy := *settings
	withProxy.Browser.ProxyURL = proxy
	opts.Config = &withProxy
	content, err = gs.Scrape(ctx, target, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page (even with proxy): %w", err)
	}
	log.Info().Str("proxy", proxy).Msg("fetched successfully with proxy")
	return content, nil
}

func runBatch(ctx context.Context, settings *config.Config, opts scraper.Options) (scraper.Content, error) {
	name := site
	if name == "" {
		name = "generic"
	}
	s, ok := scraper.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown site: %s", name)
	}

	f, err := os.Open(batchFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()
	queries, err := batch.ReadQueries(f)
	if err != nil {
		return nil, err
	}
	if name == "generic" {
		for i, q := range queries {
			queries[i] = normalizeURL(q)
		}
	}

	content, err := batch.New(s, settings.Batch, opts).Run(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("batch failed: %w", err)
	}
	if n := content.Failed(); n > 0 {
		zerolog.Ctx(ctx).Warn().Int("failed", n).Int("total", len(queries)).Msg("some queries failed")
	}
	return content, nil
}

func validateFlags() error {
	if _, err := formatter.Resolve(outputFormat); err != nil {
		return err
	}

	if site == "" {
		validLevels := map[string]bool{
			generic.LevelFull:    true,
			generic.LevelBody:    true,
			generic.LevelContent: true,
			generic.LevelCSS:     true,
		}
		if !validLevels[level] {
			return fmt.Errorf("invalid content level: %s", level)
		}
		if level == generic.LevelCSS && selector == "" {
			return fmt.Errorf("--selector is required when using 'css' level")
		}
		if level != generic.LevelCSS && selector != "" {
			return fmt.Errorf("--selector is only valid with 'css' level")
		}
	}

	if maxResults < 0 {
		return fmt.Errorf("--max-results cannot be negative")
	}
	return nil
}

// normalizeURL normalizes URL, adds http:// if no protocol prefix
func normalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return rawURL
	}
	if !strings.HasPrefix(strings.ToLower(rawURL), "http://") && !strings.HasPrefix(strings.ToLower(rawURL), "https://") {
		return "http://" + rawURL
	}
	return rawURL
}
