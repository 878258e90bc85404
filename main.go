package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/app"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/codegen"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/config"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/logging"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/services"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/story"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 30 * time.Second

var (
	configPath string

	analyzeProfile    string
	analyzeGoal       string
	analyzeAnalysisID string
	analyzeLanguage   string

	rootCmd = &cobra.Command{
		Use:           "data-nexa",
		Short:         "AI data-quality insights for profiled datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and MCP endpoint",
		RunE:  runServe,
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Generate insights for one profile file and print them as JSON",
		RunE:  runAnalyze,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to config.yaml")

	analyzeCmd.Flags().StringVar(&analyzeProfile, "profile", "", "profiler output JSON file (- for stdin)")
	analyzeCmd.Flags().StringVar(&analyzeGoal, "goal", string(models.GoalExploratory), "analysis goal")
	analyzeCmd.Flags().StringVar(&analyzeAnalysisID, "analysis-id", "cli", "analysis identifier used for caching")
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", string(codegen.LanguagePython), "snippet language: python, sql or r")
	_ = analyzeCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(serveCmd, analyzeCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger and components.
func setup(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, err := config.Load(configPath, Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Env)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return a, logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, logger, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer func() { _ = a.Close() }()

	cfg := a.Config
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           a.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting data-nexa",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	profile, err := readProfile(analyzeProfile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, logger, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer func() { _ = a.Close() }()

	result, err := a.Insights.GenerateInsights(ctx, &services.InsightRequest{
		AnalysisID: analyzeAnalysisID,
		Profile:    profile,
		Goal:       models.GoalType(analyzeGoal),
		Language:   codegen.Language(analyzeLanguage),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), story.ShortSummary(profile))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func readProfile(path string) (*models.ProfileResult, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile models.ProfileResult
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &profile, nil
}
