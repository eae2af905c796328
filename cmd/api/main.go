package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-discovery/internal/api"
	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "recipe-discovery",
		Short: "Recipe discovery service",
		Long: `Recipe discovery detects ingredients in photos, estimates nutrition,
matches the detected ingredients against saved and searched recipes, and
suggests substitutes for whatever is missing.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("recipe-discovery version %s (built %s)\n", version, buildTime)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "detect <image>",
		Short: "Detect ingredients in an image file or URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetect,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "estimate <image>",
		Short: "Estimate nutrition facts for a food image",
		Args:  cobra.ExactArgs(1),
		RunE:  runEstimate,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := common.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer common.Sync()

	common.LogInfo("Starting application",
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
		zap.Bool("debug", cfg.App.Debug),
		zap.String("gemini_api_key", common.MaskAPIKey(cfg.Gemini.APIKey)),
		zap.String("roboflow_api_key", common.MaskAPIKey(cfg.Roboflow.APIKey)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := api.NewServices(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close(context.Background())

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      api.SetupRouter(cfg, svc),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		common.LogInfo("HTTP server listening", zap.String("addr", srv.Addr))
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
	case <-ctx.Done():
	}

	common.LogInfo("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return err
	}

	common.LogInfo("Server exited")
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	core, err := loadCore()
	if err != nil {
		return err
	}
	defer common.Sync()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	ingredients, err := core.Detector.DetectIngredients(ctx, args[0])
	if err != nil {
		return describe(err)
	}
	return printJSON(cmd, map[string]interface{}{
		"ingredients": ingredients,
		"count":       len(ingredients),
	})
}

func runEstimate(cmd *cobra.Command, args []string) error {
	core, err := loadCore()
	if err != nil {
		return err
	}
	defer common.Sync()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	facts, err := core.Estimator.EstimateNutrition(ctx, args[0])
	if err != nil {
		return describe(err)
	}
	return printJSON(cmd, facts)
}

func loadCore() (*api.Core, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := common.InitLoggerTo(os.Stderr, cfg.Log.Level, ""); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	// CLI 不需要共用快取
	cfg.Cache.Backend = "memory"
	return api.NewCore(cfg)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

func describe(err error) error {
	kind := common.KindOf(err)
	return fmt.Errorf("%s: %s (%w)", kind, common.UserMessage(kind), err)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
