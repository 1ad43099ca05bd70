package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TobiSchelling/postqa/internal/answer"
	"github.com/TobiSchelling/postqa/internal/assistant"
	"github.com/TobiSchelling/postqa/internal/collect"
	"github.com/TobiSchelling/postqa/internal/compose"
	"github.com/TobiSchelling/postqa/internal/config"
	"github.com/TobiSchelling/postqa/internal/database"
	"github.com/TobiSchelling/postqa/internal/eval"
	"github.com/TobiSchelling/postqa/internal/filter"
	"github.com/TobiSchelling/postqa/internal/ingest"
	"github.com/TobiSchelling/postqa/internal/llm"
	"github.com/TobiSchelling/postqa/internal/logging"
	"github.com/TobiSchelling/postqa/internal/pipeline"
	"github.com/TobiSchelling/postqa/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     *zap.SugaredLogger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "postqa",
	Short:   "Ask questions about LinkedIn profiles and posts",
	Long:    "postqa loads profile and post exports, answers questions about them with ordered rules, and drafts new posts.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init, version and rules need no config
		if cmd.Name() == "init" || cmd.Name() == "version" || cmd.Name() == "rules" {
			l, err := logging.New("INFO", verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger, err = logging.New(cfg.Logging.Level, verbose)
		if err != nil {
			return err
		}
		logger.Debugf("using config %s", path)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("postqa", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/postqa/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point at your CSV exports, feeds and LLM provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Println("Posts:")
		fmt.Printf("  Stored: %d\n", stats.TotalPosts)
		fmt.Printf("  Authors: %d\n", stats.Authors)
		fmt.Printf("  Content fetched: %d\n", stats.FetchedPosts)
		fmt.Println("\nActivity:")
		fmt.Printf("  Questions asked: %d\n", stats.Questions)
		fmt.Printf("  Drafts written: %d\n", stats.Drafts)
		fmt.Printf("  Ingest runs: %d\n", stats.IngestRuns)

		last, err := db.LastIngestRun()
		if err != nil {
			return err
		}
		if last != nil {
			fmt.Printf("\nLast ingest: %s (%d loaded, %d collected, %d fetched, %d failed)\n",
				deref(last.RunAt), last.Loaded, last.Collected, last.Fetched, last.Failed)
		}
		return nil
	},
}

// --- load command ---

var replace bool

var loadCmd = &cobra.Command{
	Use:   "load [file...]",
	Short: "Store records from CSV or JSON files (defaults to sources.csv)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		paths := args
		if len(paths) == 0 {
			paths = cfg.Sources.CSV
		}
		if len(paths) == 0 {
			return errors.New("no files given and sources.csv is empty")
		}

		result := pipeline.New(cfg, db, logger).Load(paths, replace)
		printSteps(result)
		if result.Failed() {
			return errors.New("load failed")
		}
		return nil
	},
}

func init() {
	loadCmd.Flags().BoolVar(&replace, "replace", false, "Delete stored posts before loading")
}

// --- collect command ---

var daysBack int

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect posts from configured feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if len(cfg.Sources.Feeds) == 0 {
			fmt.Println("No feeds configured.")
			return nil
		}

		fmt.Println("Collecting posts from feeds...")
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		collector := collect.NewCollector(cfg.Sources.Feeds, db, daysBack, logger)
		result := collector.Collect(ctx)

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  New posts: %d\n", result.NewPosts)
		fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)

		if len(result.Sources) > 0 {
			fmt.Println("\nPosts by source:")
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range result.Sources {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}
		return nil
	},
}

func init() {
	collectCmd.Flags().IntVar(&daysBack, "days-back", 0, "Skip feed items older than this many days (0 keeps all)")
}

// --- ingest command ---

var (
	dryRun  bool
	noFetch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the full ingest: load -> collect -> fetch",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db, logger)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun()
		} else {
			result = pipe.Run(ctx, pipeline.Options{DaysBack: daysBack, Replace: replace, SkipFetch: noFetch})
		}
		printSteps(result)

		if !dryRun {
			fmt.Println("\nIngest complete! Run 'postqa ask' or 'postqa serve' to query the posts.")
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	ingestCmd.Flags().IntVar(&daysBack, "days-back", 0, "Skip feed items older than this many days (0 keeps all)")
	ingestCmd.Flags().BoolVar(&replace, "replace", false, "Delete stored posts before loading")
	ingestCmd.Flags().BoolVar(&noFetch, "no-fetch", false, "Skip content backfill")
}

func printSteps(result *pipeline.Result) {
	for i, step := range result.Steps {
		fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
		if step.Err != nil {
			fmt.Printf("  Error: %v\n", step.Err)
		} else {
			fmt.Printf("  %s\n", step.Summary)
		}
	}
}

// --- ask command ---

var (
	noGenerate bool
	asJSON     bool
	topK       int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question about the stored posts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		asst, err := newAssistant(ctx, db, !noGenerate)
		if err != nil {
			return err
		}

		reply := asst.Ask(ctx, strings.Join(args, " "), !noGenerate)
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(reply)
		}

		fmt.Println(reply.Text)
		if verbose {
			fmt.Printf("\n[%s %s, %d candidates]\n", reply.Stage, reply.Rule, reply.Candidates)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&noGenerate, "no-generate", false, "Never fall back to the language model")
	askCmd.Flags().BoolVar(&asJSON, "json", false, "Print the reply as JSON")
	askCmd.Flags().IntVar(&topK, "top-k", -1, "Override retrieval.top_k (0 uses every post)")
}

// newAssistant loads the stored posts and wires the configured collaborators.
func newAssistant(ctx context.Context, db *database.DB, generate bool) (*assistant.Assistant, error) {
	c, err := db.LoadCollection()
	if err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}
	logger.Debugf("loaded %d posts", len(c))

	opts := []assistant.Option{
		assistant.WithQuestionLog(db),
		assistant.WithLogger(logger),
		assistant.WithGeneration(cfg.Generation.MaxTokens, cfg.Generation.Temperature),
	}
	k := cfg.Retrieval.TopK
	if topK >= 0 {
		k = topK
	}
	if k > 0 {
		opts = append(opts, assistant.WithRetriever(assistant.TopK{K: k}))
	}
	if generate {
		if p := llm.CreateProvider(ctx, cfg.Generation, logger); p != nil {
			opts = append(opts, assistant.WithGenerator(p))
		}
	}
	return assistant.New(c, opts...), nil
}

// --- eval command ---

var evalGenerate bool

var evalCmd = &cobra.Command{
	Use:   "eval [cases.yaml]",
	Short: "Score answers against expected ones (exact match and token F1)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suite, err := eval.LoadSuite(config.ExpandHome(args[0]))
		if err != nil {
			return err
		}

		ctx := context.Background()
		posts := suite.Posts
		if len(posts) == 0 {
			db, err := openDB()
			if err != nil {
				return err
			}
			posts, err = db.LoadCollection()
			db.Close()
			if err != nil {
				return fmt.Errorf("loading posts: %w", err)
			}
		}

		opts := []assistant.Option{assistant.WithLogger(logger)}
		if cfg.Retrieval.TopK > 0 {
			opts = append(opts, assistant.WithRetriever(assistant.TopK{K: cfg.Retrieval.TopK}))
		}
		if evalGenerate {
			if p := llm.CreateProvider(ctx, cfg.Generation, logger); p != nil {
				opts = append(opts,
					assistant.WithGenerator(p),
					assistant.WithGeneration(cfg.Generation.MaxTokens, cfg.Generation.Temperature))
			}
		}

		report := eval.Run(ctx, assistant.New(posts, opts...), suite.Cases, evalGenerate)
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		for i, sc := range report.Scores {
			mark := " "
			if sc.ExactMatch {
				mark = "="
			}
			fmt.Printf("%s %2d. F1 %.2f  [%s] %s\n", mark, i+1, sc.F1, sc.Stage, sc.Question)
			if verbose {
				fmt.Printf("      expected: %s\n      answer:   %s\n", sc.Expected, strings.ReplaceAll(sc.Answer, "\n", " "))
			}
		}
		fmt.Printf("\n%d cases  exact match: %.2f  F1: %.2f\n", len(report.Scores), report.ExactMatch, report.F1)
		return nil
	},
}

func init() {
	evalCmd.Flags().BoolVar(&evalGenerate, "generate", false, "Let the language model answer questions the rules miss")
	evalCmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
}

// --- history command ---

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently asked questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		qs, err := db.RecentQuestions(historyLimit)
		if err != nil {
			return err
		}
		if len(qs) == 0 {
			fmt.Println("No questions asked yet. Try: postqa ask \"Which post has the most likes?\"")
			return nil
		}
		for _, q := range qs {
			rule := deref(q.Rule)
			if rule == "" {
				rule = "-"
			}
			fmt.Printf("  %s  %-9s %-22s %s\n", deref(q.AskedAt), q.Stage, rule, q.Text)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of questions to show")
}

// --- compose command ---

var fromTop bool

var composeCmd = &cobra.Command{
	Use:   "compose [prompt]",
	Short: "Draft a new post from a prompt or from the top stored posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !fromTop && len(args) == 0 {
			return errors.New("give a prompt or use --from-top")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		provider := llm.CreateProvider(ctx, cfg.Generation, logger)
		if provider == nil {
			return compose.ErrNoProvider
		}
		comp := newComposer(db, provider)

		var drafts []database.Draft
		if fromTop {
			c, err := db.LoadCollection()
			if err != nil {
				return fmt.Errorf("loading posts: %w", err)
			}
			if drafts, err = comp.FromTopPosts(ctx, c); err != nil {
				return err
			}
		} else {
			d, err := comp.FromPrompt(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			drafts = []database.Draft{*d}
		}

		for i, d := range drafts {
			if len(drafts) > 1 {
				fmt.Printf("--- Draft %d ---\n", i+1)
			}
			fmt.Println(d.Body)
			fmt.Println()
		}
		fmt.Printf("Saved %d draft(s) to %s\n", len(drafts), draftsCSV())
		return nil
	},
}

func init() {
	composeCmd.Flags().BoolVar(&fromTop, "from-top", false, "Model new posts on the highest-engagement stored posts")
}

func newComposer(db *database.DB, provider compose.Provider) *compose.Composer {
	return compose.NewComposer(db, provider,
		compose.WithCSV(draftsCSV()),
		compose.WithSamples(cfg.Compose.Samples, cfg.Compose.MaxWords),
		compose.WithGeneration(cfg.Generation.MaxTokens, cfg.Generation.Temperature),
		compose.WithLogger(logger),
	)
}

func draftsCSV() string {
	return filepath.Join(cfg.GetDataDir(), "generated_posts.csv")
}

// --- dump command ---

var dumpCmd = &cobra.Command{
	Use:   "dump [path]",
	Short: "Write every stored post to a JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		path := filepath.Join(cfg.GetDataDir(), "raw_metadata.json")
		if len(args) == 1 {
			path = config.ExpandHome(args[0])
		}

		c, err := db.LoadCollection()
		if err != nil {
			return fmt.Errorf("loading posts: %w", err)
		}
		if err := ingest.DumpJSON(path, c); err != nil {
			return err
		}
		fmt.Printf("Dumped %d posts to %s\n", len(c), path)
		return nil
	},
}

// --- rules command ---

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the question rules in priority order",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Direct answers:")
		for i, name := range answer.RuleNames() {
			fmt.Printf("  %2d. %s\n", i+1, name)
		}
		fmt.Println("\nFilters:")
		for i, name := range filter.RuleNames() {
			fmt.Printf("  %2d. %s\n", i+1, name)
		}
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		asst, err := newAssistant(ctx, db, true)
		if err != nil {
			return err
		}

		opts := []server.Option{server.WithLogger(logger)}
		if provider := llm.CreateProvider(ctx, cfg.Generation, logger); provider != nil {
			opts = append(opts, server.WithComposer(newComposer(db, provider)))
		}
		srv, err := server.New(db, asst, opts...)
		if err != nil {
			return err
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return srv.Serve(port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openDB() (*database.DB, error) {
	return database.Open(cfg.DBPath(), database.WithLogger(logger))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
