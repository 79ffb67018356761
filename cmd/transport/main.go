package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"service-transport/internal/app"
	servicemigrations "service-transport/migrations"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "transport",
		Short:         "Schedule-slot service for the school transport operation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newReportCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)

	config, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	debugEnabled := strings.EqualFold(strings.TrimSpace(config.LogLevel), "debug")
	debugf := func(format string, args ...any) {
		if debugEnabled {
			logger.Printf("[DEBUG] "+format, args...)
		}
	}

	debugf("config loaded: http_addr=%s db_max_open=%d db_max_idle=%d db_conn_max_lifetime=%s",
		config.HTTPAddr,
		config.DBMaxOpenConns,
		config.DBMaxIdleConns,
		config.DBConnMaxLifetime,
	)

	db, err := openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()
	debugf("database connection successful")

	if err := servicemigrations.Up(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	debugf("migrations completed successfully")

	application := app.New(db)
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           application.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-shutdownCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Printf("http shutdown error: %v", err)
		}
	}()

	logger.Printf("service-transport listening on %s", config.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	report := &cobra.Command{
		Use:   "report",
		Short: "Reporting jobs over the current slot population",
	}
	report.AddCommand(&cobra.Command{
		Use:   "route-occupancy",
		Short: "Write the per-route distinct-student occupancy report as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRouteOccupancyReport(cmd.Context())
		},
	})
	return report
}

func runRouteOccupancyReport(ctx context.Context) error {
	config, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	db, err := openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := app.New(db).Reports().RouteOccupancy(ctx)
	if err != nil {
		return fmt.Errorf("route occupancy report: %w", err)
	}

	writer := csv.NewWriter(os.Stdout)
	if err := writer.Write([]string{"route", "am", "md", "pm", "ex", "total"}); err != nil {
		return err
	}
	for _, row := range report {
		record := []string{
			row.Route,
			strconv.Itoa(row.Counts.AM),
			strconv.Itoa(row.Counts.MD),
			strconv.Itoa(row.Counts.PM),
			strconv.Itoa(row.Counts.EX),
			strconv.Itoa(row.Counts.Total()),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func openDatabase(config config) (*sql.DB, error) {
	db, err := sql.Open("pgx", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(config.DBConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

type config struct {
	DatabaseURL       string
	HTTPAddr          string
	LogLevel          string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
}

func loadConfig() (config, error) {
	// .env is a local-development convenience; missing files are fine.
	_ = godotenv.Load()

	var cfg config

	var err error
	if cfg.DatabaseURL, err = getRequiredEnv("DATABASE_URL"); err != nil {
		return cfg, err
	}
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	if cfg.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return cfg, err
	}
	if cfg.DBMaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return cfg, err
	}
	if cfg.DBConnMaxLifetime, err = getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func getRequiredEnv(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", &configError{message: "missing required environment variable: " + key}
	}
	return value, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, &configError{message: "invalid int for " + key + ": " + err.Error()}
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, &configError{message: "invalid duration for " + key + ": " + err.Error()}
	}
	return parsed, nil
}

type configError struct {
	message string
}

func (e *configError) Error() string {
	return e.message
}

var _ error = (*configError)(nil)
