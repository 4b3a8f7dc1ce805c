package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/config"
	"github.com/TobiSchelling/BriefStudio/internal/database"
	"github.com/TobiSchelling/BriefStudio/internal/gateway"
	"github.com/TobiSchelling/BriefStudio/internal/history"
	"github.com/TobiSchelling/BriefStudio/internal/imagecache"
	"github.com/TobiSchelling/BriefStudio/internal/pipeline"
	"github.com/TobiSchelling/BriefStudio/internal/results"
	"github.com/TobiSchelling/BriefStudio/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "briefstudio",
	Short:   "AI social media content from a brand brief",
	Long:    "BriefStudio turns a brand brief into a strategy, editorial themes, creative briefs and validated images.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(".env"); err != nil {
				fmt.Printf("Warning: Error loading .env file: %v\n", err)
			}
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			setLogFlags(verbose)
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
		setLogFlags(verbose || strings.EqualFold(cfg.Logging.Level, "DEBUG"))
		return nil
	},
}

func setLogFlags(debug bool) {
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("briefstudio", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/briefstudio/",
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
		fmt.Println("Edit it to configure the backend, providers and inspiration feeds.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored runs and image cache status",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()
		ctx := env.ctx(cmd.Context())

		runs, err := env.store.List(ctx, 0)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		stats, err := env.cache.Stats(ctx)
		if err != nil {
			return fmt.Errorf("getting cache stats: %w", err)
		}

		fmt.Printf("Store: %s\n", cfg.Store.Mode)
		fmt.Printf("Backend: %s\n", cfg.API.BaseURL)
		if cfg.UserEmail() == "" {
			fmt.Printf("  (%s not set: backend calls will be rejected)\n", cfg.API.UserEmailEnv)
		}
		fmt.Printf("Text provider: %s\n", cfg.Text.Provider)
		fmt.Printf("Image provider: %s\n", cfg.Image.Provider)
		fmt.Println("\nRuns:")
		fmt.Printf("  Total: %d\n", len(runs))
		if len(runs) > 0 {
			fmt.Printf("  Latest: %s (%s)\n", runs[0].CompanyName, runs[0].BriefID)
		}
		fmt.Println("\nImage cache:")
		fmt.Printf("  Images: %d\n", stats.TotalImages)
		fmt.Printf("  Average score: %.1f\n", stats.AverageScore)
		return nil
	},
}

// --- generate / resume commands ---

var briefPath string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full pipeline: strategy -> themes -> briefs -> visuals -> images",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := brief.Load(briefPath)
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		pipe := pipeline.New(cfg, env.client, env.store, env.cache)
		resp := pipe.Generate(ctx, env.creds, b, newProgress(os.Stdout).report)
		return report(resp)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&briefPath, "brief", "b", "brief.yaml", "Brief file (YAML or JSON)")
}

var dryRun bool

var resumeCmd = &cobra.Command{
	Use:   "resume [brief-id]",
	Short: "Continue a partially completed run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		pipe := pipeline.New(cfg, env.client, env.store, env.cache)

		if dryRun {
			plan, err := pipe.DryRun(env.ctx(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			for i, step := range plan.Steps {
				fmt.Printf("\nStep %d/%d: %s\n", i+1, len(plan.Steps), step.Name)
				fmt.Printf("  %s\n", step.Summary)
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		resp := pipe.Resume(ctx, env.creds, args[0], newProgress(os.Stdout).report)
		return report(resp)
	},
}

func init() {
	resumeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
}

func report(resp pipeline.Response) error {
	if !resp.Success {
		return resp.Error
	}
	r := resp.Data
	fmt.Println()
	fmt.Println(doneStyle.Render("Generation complete!"))
	fmt.Printf("  Run: %s\n", r.BriefID)
	fmt.Printf("  Briefs: %d\n", r.BriefCount())
	fmt.Printf("  Images: %d\n", len(r.ExecutedBriefs))
	if len(r.FailedBriefs) > 0 {
		fmt.Println(failStyle.Render(fmt.Sprintf("  Failed images: %d (retry with 'briefstudio resume %s')", len(r.FailedBriefs), r.BriefID)))
	}
	fmt.Printf("\nRun 'briefstudio show %s' or 'briefstudio serve' to view it.\n", r.BriefID)
	return nil
}

// --- show command ---

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [brief-id]",
	Short: "Print a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		r, err := env.store.Get(env.ctx(cmd.Context()), args[0])
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("run %s not found", args[0])
		}

		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}
		printResult(os.Stdout, r)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the raw result as JSON")
}

func printResult(w io.Writer, r *brief.Result) {
	if r.BriefData != nil {
		fmt.Fprintln(w, titleStyle.Render(r.BriefData.CompanyName))
		fmt.Fprintf(w, "%s · updated %s\n", r.BriefData.Sector, r.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	if s := r.Strategy; s != nil {
		fmt.Fprintln(w, headStyle.Render("\nStrategy"))
		if s.Analysis.Positioning != "" {
			fmt.Fprintf(w, "  Positioning: %s\n", s.Analysis.Positioning)
		}
		for _, t := range s.Themes {
			fmt.Fprintf(w, "  - %s: %s\n", t.Name, t.Objective)
		}
	}
	if len(r.ExecutedBriefs) > 0 {
		fmt.Fprintln(w, headStyle.Render("\nPosts"))
		for i, e := range r.ExecutedBriefs {
			fmt.Fprintf(w, "  %d. [%s] %s\n     %s\n", i+1, e.Image.Quality, e.Content.Main, e.Image.URL)
		}
	} else if r.Briefs != nil {
		fmt.Fprintln(w, headStyle.Render("\nBriefs"))
		for i, b := range r.Briefs.Briefs {
			fmt.Fprintf(w, "  %d. %s\n", i+1, b.Content.Main)
		}
	}
	for _, f := range r.FailedBriefs {
		fmt.Fprintln(w, failStyle.Render(fmt.Sprintf("  failed: %s (%s)", f.VisualPrompt, f.Error)))
	}
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local backend and results pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(results.NewLocal(db), imagecache.NewLocal(db), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- cache command ---

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clean the image cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show image cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.cache.Stats(env.ctx(cmd.Context()))
		if err != nil {
			return err
		}
		fmt.Println("Image cache:")
		fmt.Printf("  Images: %d\n", stats.TotalImages)
		fmt.Printf("  Average score: %.1f\n", stats.AverageScore)
		if stats.TotalSize > 0 {
			fmt.Printf("  Size: %d bytes\n", stats.TotalSize)
		}
		return nil
	},
}

var olderThan int

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached images older than a number of days",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.cache.Clear(env.ctx(cmd.Context()), olderThan)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d cached image(s) older than %d day(s)\n", n, olderThan)
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().IntVar(&olderThan, "older-than", 30, "Age in days")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// --- history command ---

var historyPurpose string

var historyCmd = &cobra.Command{
	Use:   "history [generation-id]",
	Short: "Show the image generation attempts of one image",
	Long:  "Image sessions are named <brief-id>-image-<n>, one per creative brief.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()
		ctx := env.ctx(cmd.Context())

		tracker := history.New(env.store)
		stats, err := tracker.Stats(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Session: %s\n", args[0])
		fmt.Printf("  Attempts: %d\n", stats.TotalAttempts)
		fmt.Printf("  Average score: %.1f\n", stats.AverageScore)
		fmt.Printf("  Best score: %d\n", stats.BestScore)
		fmt.Printf("  Success rate: %.0f%%\n", stats.SuccessRate)
		fmt.Printf("  Time spent: %s\n", stats.TimeSpent.Round(time.Second))

		best, err := tracker.LastSuccessful(ctx, args[0], historyPurpose)
		if err != nil {
			return err
		}
		if best != nil {
			fmt.Printf("\nBest %s image (attempt %d, score %d):\n  %s\n", historyPurpose, best.Metadata.Attempt, best.Score, best.ImageURL)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyPurpose, "purpose", "social", "Purpose to pick the best image for")
}

// env holds the collaborators selected by the store mode.
type env struct {
	client *gateway.Client
	creds  gateway.Credentials
	store  results.Store
	cache  imagecache.Cache
	db     *database.DB
}

func openEnv() (*env, error) {
	e := &env{
		client: gateway.New(cfg.API.BaseURL, cfg.API.Timeout),
		creds:  gateway.Credentials{UserEmail: cfg.UserEmail()},
	}

	if cfg.Store.Mode == "remote" {
		e.store = results.NewRemote(e.client)
		e.cache = imagecache.NewRemote(e.client)
		return e, nil
	}

	db, err := openDB()
	if err != nil {
		return nil, err
	}
	e.db = db
	e.store = results.NewLocal(db)
	e.cache = imagecache.NewLocal(db)
	return e, nil
}

func (e *env) ctx(parent context.Context) context.Context {
	return gateway.WithCredentials(parent, e.creds)
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(cfg.DBPath())
}
