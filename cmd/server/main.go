package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/carekeeper/internal/config"
	"github.com/iudanet/carekeeper/internal/logging"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/push"
	"github.com/iudanet/carekeeper/internal/reliability"
	"github.com/iudanet/carekeeper/internal/server"
	"github.com/iudanet/carekeeper/internal/server/clock"
	"github.com/iudanet/carekeeper/internal/server/handlers"
	"github.com/iudanet/carekeeper/internal/server/kv"
	"github.com/iudanet/carekeeper/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to config file (yaml, toml or json)")
	issueFor := flag.String("issue-token", "", "Issue a device token for the given user id and exit")
	deviceID := flag.String("device", "", "Device id for -issue-token")
	tier := flag.String("tier", string(models.TierFree), "Subscription tier for -issue-token")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.LoadServer(nil, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	jwtCfg := handlers.JWTConfig{
		Issuer:   handlers.DefaultIssuer,
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: cfg.TokenTTL,
	}

	if *issueFor != "" {
		token, expires, err := handlers.IssueDeviceToken(jwtCfg, *issueFor, *deviceID, models.Tier(*tier))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "expires at %s\n", expires.Format("2006-01-02 15:04:05 MST"))
		os.Exit(0)
	}

	logger, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, jwtCfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Server, jwtCfg handlers.JWTConfig, logger *slog.Logger) error {
	logger.Info("CareKeeper server starting", "version", Version, "addr", cfg.Addr)

	db, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	lamport := clock.New()
	if err := lamport.Restore(ctx, db); err != nil {
		return err
	}
	logger.Info("Sequence clock restored", "node_id", lamport.NodeID(), "sequence", lamport.Now())

	var idem kv.Store = kv.NewMemoryStore(nil)
	if cfg.Redis.Addr != "" {
		redisStore, err := kv.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		idem = redisStore
		logger.Info("Idempotency store: redis", "addr", cfg.Redis.Addr)
	}

	var notifier handlers.ChangeNotifier
	if cfg.MQTT.Broker != "" {
		broker, err := push.Dial(cfg.MQTT, logger)
		if err != nil {
			return err
		}
		defer broker.Close()
		notifier = push.NewNotifier(broker, logger)
	} else {
		logger.Warn("MQTT broker is not configured, change notifications are disabled")
	}

	srv, err := server.New(server.Config{
		Addr:            cfg.Addr,
		JWT:             jwtCfg,
		IdempotencyTTL:  cfg.IdempotencyTTL,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, server.Deps{
		Storage:  db,
		DB:       db,
		Clock:    lamport,
		Notifier: notifier,
		KV:       idem,
		Limiter:  reliability.NewRateLimiter(cfg.RateLimits, nil, logger),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("CareKeeper Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
