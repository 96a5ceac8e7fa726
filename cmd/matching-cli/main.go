// Package main provides the matching engine CLI entrypoint.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/cache"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/config"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/inventory"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/matching"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/observability"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/storage"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/pkg/engine"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "matching-cli",
	Short: "Matching engine CLI for inventory sync, matching, and build readiness",
	Long: `Matching engine CLI provides commands for construction component procurement.

Use this tool to:
- Sync inventory catalogs from JSON exports
- Match required components against the catalog
- Analyze component availability and urgency
- Plan procurement order for a component list
- Assess project build readiness

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		level := cfg.Observability.LogLevel
		if verbose {
			level = "debug"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      logFormat,
			ServiceName: "matching-cli",
		})

		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newAvailabilityCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newReadinessCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openEngine wires the engine plus the backing store for one CLI invocation.
func openEngine() (*engine.Engine, *storage.InventoryRepository, *sql.DB, func(), error) {
	var cacheClient cache.Client
	if cfg.Cache.Driver == "redis" {
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, falling back to memory cache")
			cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
		} else {
			cacheClient = redisClient
		}
	} else {
		cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}

	db, err := sql.Open(cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		_ = cacheClient.Close()
		return nil, nil, nil, nil, fmt.Errorf("open database: %w", err)
	}

	repo := storage.NewInventoryRepository(db)
	if err := repo.Migrate(context.Background()); err != nil {
		_ = db.Close()
		_ = cacheClient.Close()
		return nil, nil, nil, nil, fmt.Errorf("migrate inventory schema: %w", err)
	}

	eng, err := engine.New(cfg, logger, cacheClient)
	if err != nil {
		_ = db.Close()
		_ = cacheClient.Close()
		return nil, nil, nil, nil, fmt.Errorf("construct engine: %w", err)
	}

	cleanup := func() {
		_ = db.Close()
		_ = cacheClient.Close()
	}
	return eng, repo, db, cleanup, nil
}

// loadComponents reads a component list from a JSON file. The file may hold
// either a bare array or an object with a "components" field.
func loadComponents(path string) ([]matching.RequiredComponent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read components file: %w", err)
	}

	var components []matching.RequiredComponent
	if err := json.Unmarshal(data, &components); err == nil {
		return components, nil
	}

	var wrapper struct {
		Components []matching.RequiredComponent `json:"components"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse components file: %w", err)
	}
	return wrapper.Components, nil
}

// newSyncCmd creates the sync subcommand.
func newSyncCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync an inventory catalog from a JSON export",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := NewUI(outputJSON, noColor)

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read inventory file: %w", err)
			}

			var items []matching.InventoryItem
			if err := json.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("parse inventory file: %w", err)
			}

			bar := ui.NewProgressBar(len(items), "Validating items")
			for _, item := range items {
				if err := item.Validate(); err != nil {
					ui.Error("Invalid item %s: %v", item.ID, err)
					return err
				}
				_ = bar.Add(1)
			}

			eng, repo, _, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			stop := ui.Spinner("Persisting catalog")
			if err := repo.ReplaceAll(ctx, items); err != nil {
				stop()
				return fmt.Errorf("persist inventory: %w", err)
			}
			snapshot, err := eng.Sync(ctx, repo)
			stop()
			if err != nil {
				return fmt.Errorf("publish snapshot: %w", err)
			}

			if outputJSON {
				return printJSON(map[string]interface{}{
					"items":   len(snapshot.Items),
					"version": snapshot.Version,
				})
			}
			ui.Success("Synced %d items (snapshot version %d)", len(snapshot.Items), snapshot.Version)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "inventory JSON file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// newMatchCmd creates the match subcommand.
func newMatchCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a required component against the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := NewUI(outputJSON, noColor)

			components, err := loadComponents(file)
			if err != nil {
				return err
			}
			if len(components) == 0 {
				return fmt.Errorf("no components in %s", file)
			}

			eng, repo, _, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			snapshot, err := eng.Sync(cmd.Context(), repo)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			if len(snapshot.Items) == 0 {
				return fmt.Errorf("match: %w", inventory.ErrEmptyCatalog)
			}

			for _, component := range components {
				stop := ui.Spinner(fmt.Sprintf("Matching %s", component.Name))
				matches, err := eng.Match(cmd.Context(), component)
				stop()
				if err != nil {
					return fmt.Errorf("match %s: %w", component.Name, err)
				}

				if outputJSON {
					if err := printJSON(map[string]interface{}{
						"component": component.Name,
						"matches":   matches,
					}); err != nil {
						return err
					}
					continue
				}

				ui.Header("%s: %d match(es)", component.Name, len(matches))
				for _, m := range matches {
					ui.Row("  %-24s score=%.2f type=%s", m.ItemID, m.Score, m.MatchType)
					for _, diff := range m.Differences {
						ui.Warning("    %s", diff)
					}
				}
				if len(matches) == 0 {
					alt := eng.FindAlternatives(component)
					for _, cand := range alt.Candidates {
						ui.Row("  alternative: %-24s similarity=%.2f", cand.Descriptor.Name, cand.Similarity)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "required components JSON file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// newAvailabilityCmd creates the availability subcommand.
func newAvailabilityCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Analyze availability and urgency for required components",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := NewUI(outputJSON, noColor)

			components, err := loadComponents(file)
			if err != nil {
				return err
			}

			eng, repo, _, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := eng.Sync(cmd.Context(), repo); err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			bar := ui.NewProgressBar(len(components), "Analyzing")
			analyses := make([]matching.AvailabilityAnalysis, 0, len(components))
			for _, component := range components {
				analysis, err := eng.Analyze(cmd.Context(), component)
				if err != nil {
					return fmt.Errorf("analyze %s: %w", component.Name, err)
				}
				analyses = append(analyses, analysis)
				_ = bar.Add(1)
			}

			if outputJSON {
				return printJSON(analyses)
			}

			for _, a := range analyses {
				if a.IsAvailable {
					ui.Success("%s: available (%d/%d, urgency %s)",
						a.ComponentName, a.AvailableQuantity, a.RequiredQuantity, a.Urgency)
				} else {
					ui.Warning("%s: procurement required (delivery ~%s, urgency %s)",
						a.ComponentName, a.EstimatedDelivery.Format("2006-01-02"), a.Urgency)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "required components JSON file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// newPlanCmd creates the plan subcommand.
func newPlanCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a sequenced procurement plan for required components",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := NewUI(outputJSON, noColor)

			components, err := loadComponents(file)
			if err != nil {
				return err
			}

			eng, repo, _, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := eng.Sync(cmd.Context(), repo); err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			stop := ui.Spinner("Planning procurement")
			items, err := eng.PlanProcurement(cmd.Context(), components)
			stop()
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(items)
			}

			ui.Header("Procurement plan (%d items)", len(items))
			for i, item := range items {
				ui.Row("%2d. %-24s priority=%-8s criticality=%-9s order by %s cost=%s",
					i+1, item.Component.Name, item.Priority, item.Criticality,
					item.Window.LatestOrderDate.Format("2006-01-02"),
					item.EstimatedCost.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "required components JSON file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// newReadinessCmd creates the readiness subcommand.
func newReadinessCmd() *cobra.Command {
	var (
		file      string
		projectID string
	)

	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Assess project build readiness from a component list",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := NewUI(outputJSON, noColor)

			components, err := loadComponents(file)
			if err != nil {
				return err
			}

			eng, repo, _, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := eng.Sync(cmd.Context(), repo); err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			stop := ui.Spinner("Assessing readiness")
			assessment, err := eng.AssessReadiness(cmd.Context(), projectID, components)
			stop()
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(assessment)
			}

			ui.Header("Project %s: %.0f/100 (%s)", assessment.ProjectID, assessment.Score, assessment.Status)
			ui.Row("  ready=%d pending=%d at_risk=%d critical_path=%s",
				assessment.ReadyCount, assessment.PendingCount, assessment.AtRiskCount,
				assessment.CriticalPathStatus)
			ui.Row("  estimated start: %s", assessment.EstimatedStartDate.Format("2006-01-02"))
			for _, rec := range assessment.Recommendations {
				ui.Row("  - %s", rec)
			}
			for _, risk := range assessment.RiskFactors {
				ui.Warning("  %s", risk)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "required components JSON file (required)")
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "project identifier (required)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("matching-cli 0.1.0")
		},
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
