package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-insights/internal/app"
	"github.com/yungbote/neurobridge-insights/internal/data/db"
	"github.com/yungbote/neurobridge-insights/internal/modules/insights"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/services"
)

var (
	logMode string

	computeInput    string
	computeTimezone string

	tokenUser string

	rootCmd = &cobra.Command{
		Use:           "insights",
		Short:         "Adaptive learning analytics engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the insights HTTP API and background workers",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE:  runMigrate,
	}

	computeCmd = &cobra.Command{
		Use:   "compute",
		Short: "Compute insights for a JSON snapshot without touching any store",
		Long: `Reads {"sessions":[...],"progress":[...],"preferences":{...},"peers":[...]}
from --input (or stdin when omitted or "-") and prints the insights as JSON.`,
		RunE: runCompute,
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local testing",
		RunE:  runToken,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "development or production (default $LOG_MODE)")

	computeCmd.Flags().StringVarP(&computeInput, "input", "i", "-", "snapshot JSON file")
	computeCmd.Flags().StringVar(&computeTimezone, "timezone", "UTC", "IANA timezone used for hour and weekday bucketing")

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user UUID for the subject claim (random when empty)")

	rootCmd.AddCommand(serveCmd, migrateCmd, computeCmd, tokenCmd)
}

func newLogger() (*logger.Logger, error) {
	mode := logMode
	if mode == "" {
		mode = os.Getenv("LOG_MODE")
	}
	if mode == "" {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := app.LoadConfig(log)
	if err != nil {
		return err
	}
	a, err := app.New(log, cfg)
	if err != nil {
		return err
	}
	return a.Run()
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := app.LoadConfig(log)
	if err != nil {
		return err
	}
	svc, err := db.NewService(log, cfg.DB)
	if err != nil {
		return err
	}
	defer svc.Close()
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	log.Info("Migrations applied", "driver", cfg.DB.Driver)
	return nil
}

func runCompute(cmd *cobra.Command, _ []string) error {
	var r io.Reader = cmd.InOrStdin()
	if computeInput != "" && computeInput != "-" {
		f, err := os.Open(computeInput)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var in insights.Input
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	loc, err := time.LoadLocation(strings.TrimSpace(computeTimezone))
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	in.Location = loc

	out, err := insights.ComputeInsights(in)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig(nil)
	if err != nil {
		return err
	}
	userID := uuid.New()
	if tokenUser != "" {
		if userID, err = uuid.Parse(tokenUser); err != nil {
			return fmt.Errorf("--user: %w", err)
		}
	}
	auth := services.NewAuthService(logger.NewNop(), cfg.JWTSecretKey, cfg.JWTIssuer, cfg.AccessTokenTTL)
	tok, err := auth.IssueAccessToken(userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "user_id=%s\n%s\n", userID, tok)
	return nil
}
