package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/tsgen/internal/app"
	"github.com/mmrzaf/tsgen/internal/config"
	"github.com/mmrzaf/tsgen/internal/domain"
	"github.com/mmrzaf/tsgen/internal/infra/repos/runs"
	"github.com/mmrzaf/tsgen/internal/infra/repos/scenarios"
	"github.com/mmrzaf/tsgen/internal/logging"
	"github.com/mmrzaf/tsgen/internal/metrics"
	"github.com/mmrzaf/tsgen/internal/registry"
	"github.com/mmrzaf/tsgen/internal/sources"
	"github.com/mmrzaf/tsgen/internal/validation"
)

var (
	scenariosDir string
	sourcesDir   string
	runsDBPath   string
	tsgenDBDSN   string
	logLevel     string
	maxParallel  int
	metricsFile  string
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "tsgen",
		Short: "Synthetic daily factor time-series generator",
	}

	rootCmd.PersistentFlags().StringVar(&scenariosDir, "scenarios-dir", cfg.ScenariosDir, "Scenarios directory")
	rootCmd.PersistentFlags().StringVar(&sourcesDir, "sources-dir", cfg.SourcesDir, "External sources directory")
	rootCmd.PersistentFlags().StringVar(&runsDBPath, "runs-db", cfg.RunsDBPath, "Runs database path (sqlite)")
	rootCmd.PersistentFlags().StringVar(&tsgenDBDSN, "db", cfg.TSGenDBDSN, "Postgres DSN for the runs ledger; overrides --runs-db")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")
	rootCmd.PersistentFlags().IntVar(&maxParallel, "max-parallel", cfg.MaxParallel, "Factors generated concurrently")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this file after a run")

	rootCmd.AddCommand(scenarioCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(factorCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openRunRepo() (runs.Repository, error) {
	var repo runs.Repository
	if tsgenDBDSN != "" {
		repo = runs.NewPostgresRepository(tsgenDBDSN)
	} else {
		repo = runs.NewSQLiteRepository(runsDBPath)
	}
	if err := repo.Init(); err != nil {
		return nil, fmt.Errorf("opening runs ledger: %w", err)
	}
	return repo, nil
}

func newRunService(runRepo runs.Repository) *app.RunService {
	return app.NewRunService(
		scenarios.NewFileRepository(scenariosDir),
		runRepo,
		registry.DefaultFactorRegistry(),
		sources.NewDirLoader(sourcesDir),
		nil,
		maxParallel,
		logging.NewLogger(logLevel),
	)
}

// loadScenario accepts either a scenario id or a file path inside the scenarios directory.
func loadScenario(repo *scenarios.FileRepository, ref string) (*domain.Scenario, error) {
	if strings.Contains(ref, "/") || strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") || strings.HasSuffix(ref, ".json") {
		return repo.GetByPath(ref)
	}
	return repo.Get(ref)
}

type windowFlags struct {
	start   string
	end     string
	seed    int64
	hasSeed bool
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.start, "start", "", "Window start (2006-01-02 or relative like -365d)")
	cmd.Flags().StringVar(&w.end, "end", "", "Window end (2006-01-02, today or relative)")
	cmd.Flags().Int64VarP(&w.seed, "seed", "s", 0, "Seed for RNG")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		w.hasSeed = cmd.Flags().Changed("seed")
	}
}

func (w *windowFlags) request(scenario *domain.Scenario) *domain.RunRequest {
	req := &domain.RunRequest{Scenario: scenario, Start: w.start, End: w.end}
	if w.hasSeed {
		seed := w.seed
		req.Seed = &seed
	}
	return req
}

func scenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Manage scenarios",
	}

	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := scenarios.NewFileRepository(scenariosDir)
			list, err := repo.List()
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVERSION\tWINDOW\tDIMENSIONS\tFACTORS")
			for _, s := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s..%s\t%d\t%d\n", s.ID, s.Name, s.Version, s.Start, s.End, len(s.Dimensions), len(s.Factors))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show scenario details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := scenarios.NewFileRepository(scenariosDir)
			scenario, err := loadScenario(repo, args[0])
			if err != nil {
				return err
			}

			data, _ := yaml.Marshal(scenario)
			fmt.Println(string(data))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <id|path>",
		Short: "Validate a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := scenarios.NewFileRepository(scenariosDir)
			scenario, err := loadScenario(repo, args[0])
			if err != nil {
				return err
			}

			validator := validation.NewValidator(registry.DefaultFactorRegistry())
			if err := validator.ValidateScenario(scenario); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}

			fmt.Printf("Scenario '%s' is valid\n", scenario.Name)
			return nil
		},
	}

	var planWindow windowFlags
	var planFormat string
	planCmd := &cobra.Command{
		Use:   "plan <id|path>",
		Short: "Show how much data a run would generate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := scenarios.NewFileRepository(scenariosDir)
			scenario, err := loadScenario(repo, args[0])
			if err != nil {
				return err
			}
			svc := newRunService(nil)
			plan, err := svc.Plan(planWindow.request(scenario))
			if err != nil {
				return err
			}

			if planFormat == "json" {
				data, _ := json.MarshalIndent(plan, "", "  ")
				fmt.Println(string(data))
				return nil
			}
			fmt.Printf("Number of series: %d\n", plan.Series)
			fmt.Printf("Years of history: %.2f (%d days)\n", plan.Years, plan.Days)
			fmt.Printf("Total daily data points: %d\n", plan.TotalDataPoints)
			fmt.Printf("Dimensions: %s\n", strings.Join(plan.Dimensions, ", "))
			fmt.Printf("Factors: %s\n", strings.Join(plan.Factors, ", "))
			return nil
		},
	}
	planWindow.register(planCmd)
	planCmd.Flags().StringVar(&planFormat, "format", "table", "Output format (table|json)")

	cmd.AddCommand(listCmd, showCmd, validateCmd, planCmd)
	return cmd
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Manage runs",
	}

	var (
		scenarioID   string
		scenarioPath string
		window       windowFlags
	)

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Generate every factor of a scenario and record the run",
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo, err := openRunRepo()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			svc := newRunService(runRepo)
			req := window.request(nil)

			if scenarioPath != "" {
				scenario, err := scenarios.NewFileRepository(scenariosDir).GetByPath(scenarioPath)
				if err != nil {
					return err
				}
				req.Scenario = scenario
			} else if scenarioID != "" {
				req.ScenarioID = scenarioID
			} else {
				return fmt.Errorf("either --scenario or --scenario-path required")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			run, res, err := svc.StartRun(ctx, req)
			if metricsFile != "" {
				if werr := metrics.WriteTextfile(metricsFile); werr != nil {
					fmt.Fprintf(os.Stderr, "Failed to write metrics: %v\n", werr)
				}
			}
			if run != nil {
				fmt.Printf("Run: %s\n", run.ID)
			}
			if err != nil {
				fmt.Printf("Run failed: %v\n", err)
				return err
			}

			fmt.Printf("Run completed successfully\n")
			fmt.Printf("Seed: %d\n", run.Seed)
			fmt.Printf("Window: %s..%s\n", run.WindowStart.Format(time.DateOnly), run.WindowEnd.Format(time.DateOnly))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FACTOR\tTYPE\tROWS\tCOMBINATIONS\tMIN\tMAX\tMEAN")
			for _, st := range res.Stats.FactorStats {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%.4f\t%.4f\n",
					st.FactorName, st.FactorType, st.Rows, st.Combinations, st.Min, st.Max, st.Mean)
			}
			w.Flush()
			fmt.Printf("Total rows: %d\n", res.Stats.TotalRows)
			fmt.Printf("Duration: %.2fs\n", res.Stats.DurationSeconds)
			return nil
		},
	}

	startCmd.Flags().StringVar(&scenarioID, "scenario", "", "Scenario ID")
	startCmd.Flags().StringVar(&scenarioPath, "scenario-path", "", "Scenario file path")
	window.register(startCmd)

	var limit int
	var status string
	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo, err := openRunRepo()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			list, err := newRunService(runRepo).ListRuns(limit, status)
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCENARIO\tWINDOW\tSEED\tSTATUS\tSTARTED")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%s..%s\t%d\t%s\t%s\n",
					r.ID[:8], r.ScenarioName,
					r.WindowStart.Format(time.DateOnly), r.WindowEnd.Format(time.DateOnly),
					r.Seed, r.Status, r.StartedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Limit results")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo, err := openRunRepo()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			run, err := newRunService(runRepo).GetRun(args[0])
			if err != nil {
				return err
			}

			data, _ := json.MarshalIndent(run, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.AddCommand(startCmd, listCmd, showCmd)
	return cmd
}

func factorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factor",
		Short: "Inspect factors",
	}

	typesCmd := &cobra.Command{
		Use:   "types",
		Short: "List factor types",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range registry.DefaultFactorRegistry().List() {
				fmt.Println(name)
			}
			return nil
		},
	}

	var (
		window windowFlags
		rows   int
		format string
	)
	previewCmd := &cobra.Command{
		Use:   "preview <scenario> <factor>",
		Short: "Generate one factor and print its first rows",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := loadScenario(scenarios.NewFileRepository(scenariosDir), args[0])
			if err != nil {
				return err
			}
			svc := newRunService(nil)
			tbl, err := svc.PreviewFactor(window.request(scenario), args[1])
			if err != nil {
				return err
			}
			if rows > 0 && tbl.Len() > rows {
				tbl.Rows = tbl.Rows[:rows]
			}

			if format == "json" {
				data, _ := json.MarshalIndent(tbl, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.ToUpper(strings.Join(tbl.Columns(), "\t")))
			for _, r := range tbl.Rows {
				cells := make([]string, 0, 1+len(r.Labels)+len(r.Values))
				cells = append(cells, r.Date.Format(time.DateOnly))
				cells = append(cells, r.Labels...)
				for _, v := range r.Values {
					cells = append(cells, strconv.FormatFloat(v, 'f', 4, 64))
				}
				fmt.Fprintln(w, strings.Join(cells, "\t"))
			}
			w.Flush()
			return nil
		},
	}
	window.register(previewCmd)
	previewCmd.Flags().IntVarP(&rows, "rows", "n", 20, "Rows to print (0 for all)")
	previewCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	cmd.AddCommand(typesCmd, previewCmd)
	return cmd
}
