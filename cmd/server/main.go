package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/viken-labs/ressurstorg/internal/api"
	"github.com/viken-labs/ressurstorg/internal/api/auth"
	"github.com/viken-labs/ressurstorg/internal/api/health"
	"github.com/viken-labs/ressurstorg/internal/market"
	"github.com/viken-labs/ressurstorg/internal/metrics"
	"github.com/viken-labs/ressurstorg/internal/storage"
	"github.com/viken-labs/ressurstorg/pkg/config"
)

var (
	configFile string
	httpAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ressurstorg-server",
	Short: "Ressurstorg Server - resource marketplace API",
	Long: `Ressurstorg Server hosts the marketplace where companies list
spare skilled labor, negotiate through anonymous threads, and disclose
contact information when both sides are ready.`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ressurstorg-server %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg *Config
	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
	}

	// Override with CLI flags
	if httpAddr != "" {
		cfg.Server.Address = httpAddr
	}
	cfg.Verbose = verbose

	jwtSecret := os.Getenv("RESSURSTORG_JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("RESSURSTORG_JWT_SECRET environment variable is required")
	}
	if len(jwtSecret) < 32 {
		return fmt.Errorf("RESSURSTORG_JWT_SECRET must be at least 32 bytes")
	}

	// Auto-create data directory
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// Initialize storage
	store := storage.NewSQLiteStorage(cfg.Database.Path)
	if err := store.Open(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	log.Printf("database initialized at %s", cfg.Database.Path)

	broker := market.NewBroker()
	manager := market.NewManager(store, broker)

	apiCfg := &api.Config{
		Address:             cfg.Server.Address,
		JWTSecret:           []byte(jwtSecret),
		HTTPTLSEnabled:      cfg.Server.TLS.Enabled,
		HTTPTLSCertFile:     cfg.Server.TLS.CertFile,
		HTTPTLSKeyFile:      cfg.Server.TLS.KeyFile,
		AccessTokenTTL:      cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL:     cfg.Auth.RefreshTokenTTL,
		RateLimitPerIP:      cfg.Limits.PerIP,
		RateLimitPerCompany: cfg.Limits.PerCompany,
		LockoutThreshold:    cfg.Auth.LockoutThreshold,
		LockoutDuration:     cfg.Auth.LockoutDuration,
		StreamMaxDuration:   cfg.Server.StreamMaxDuration,
		Verbose:             cfg.Verbose,
	}

	srv, err := api.New(apiCfg, store, manager)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	srv.RegisterHealthChecker(health.NewSQLiteChecker(store.DB()))

	metricsSrv := metrics.NewServer(cfg.Server.MetricsAddress)
	tokens := auth.NewTokenService(store, cfg.Auth.RefreshTokenTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("starting ressurstorg-server %s", config.Version)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gCtx)
	})

	g.Go(func() error {
		errChan := make(chan error, 1)
		go func() {
			errChan <- metricsSrv.Start()
		}()
		select {
		case <-gCtx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		case err := <-errChan:
			return err
		}
	})

	g.Go(func() error {
		return sweepTokens(gCtx, tokens, cfg.Auth.TokenSweep)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Printf("server stopped")
	return nil
}

// sweepTokens periodically deletes expired refresh tokens.
func sweepTokens(ctx context.Context, tokens *auth.TokenService, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := tokens.CleanupExpiredTokens(ctx)
			if err != nil {
				log.Printf("token sweep error: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("token sweep: removed %d expired tokens", n)
			}
		}
	}
}
