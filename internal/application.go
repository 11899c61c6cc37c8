package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/gamehub-backend/internal/arcade"
	"github.com/rocketscienceinc/gamehub-backend/internal/config"
	"github.com/rocketscienceinc/gamehub-backend/internal/metrics"
	"github.com/rocketscienceinc/gamehub-backend/internal/repository"
	"github.com/rocketscienceinc/gamehub-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gamehub-backend/internal/repository/storage/postgres"
	"github.com/rocketscienceinc/gamehub-backend/internal/repository/storage/sqlite"
	"github.com/rocketscienceinc/gamehub-backend/internal/service"
	"github.com/rocketscienceinc/gamehub-backend/internal/tictactoe"
	"github.com/rocketscienceinc/gamehub-backend/internal/usecase"
	"github.com/rocketscienceinc/gamehub-backend/transport/rest"
	"github.com/rocketscienceinc/gamehub-backend/transport/websocket"
)

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownBackend = errors.New("unknown leaderboard backend")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	leaderboardStore, closeStore, err := openLeaderboard(ctx, conf.Leaderboard, redisStorage.Connection)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeStore(); err != nil {
			log.Error("could not close leaderboard storage", "error", err)
		}
	}()

	log.Info("Leaderboard storage ready", "backend", conf.Leaderboard.Backend)

	matchRepo := repository.NewMatchRepository(redisStorage.Connection, conf.XandZero.MatchTTL)
	pointsRepo := repository.NewPointsRepository(redisStorage.Connection)
	denylist := repository.NewTokenDenylist(redisStorage.Connection)

	verifier := service.NewIdentityVerifier(logger, service.VerifierConfig{
		JWKSURL:  conf.OIDC.JWKSURL,
		Issuer:   conf.OIDC.Issuer,
		Audience: conf.OIDC.Audience,
		CacheTTL: conf.OIDC.CacheTTL,
		Timeout:  conf.OIDC.Timeout,
	}, denylist)

	leaderboard := service.NewLeaderboardService(logger, leaderboardStore, service.LeaderboardConfig{
		Timeout:       conf.Leaderboard.Timeout,
		WriteRetries:  conf.Leaderboard.WriteRetries,
		RetryInterval: conf.Leaderboard.Timeout / 4,
		DefaultGame:   conf.Leaderboard.DefaultGame,
		DefaultLimit:  conf.Leaderboard.DefaultLimit,
		MaxLimit:      conf.Leaderboard.MaxLimit,
	})

	engine := tictactoe.NewEngine(tictactoe.Config{
		AIRandomness:  conf.XandZero.AIRandomness,
		AIEraseChance: conf.XandZero.AIEraseChance,
	}, nil)
	matchManager := usecase.NewMatchManager(logger, matchRepo, pointsRepo, leaderboard, engine, conf.XandZero.AIEraseBudget)

	appMetrics := metrics.New()

	restServer := rest.New(logger, verifier, rest.NewHandlers(logger, matchManager, leaderboard), rest.WithMetrics(appMetrics))
	wsServer := websocket.New(logger, verifier, leaderboard, websocket.Config{
		TickInterval: conf.Arcade.TickInterval,
		WriteTimeout: conf.Arcade.WriteTimeout,
		PingInterval: conf.Arcade.PingInterval,
		Arcade:       arcadeConfig(conf.Arcade),
	}, websocket.WithMetrics(appMetrics))

	group, groupCtx := errgroup.WithContext(ctx)

	// run HTTP server
	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := restServer.Start(groupCtx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// run Websocket server
	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if err := wsServer.Start(groupCtx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func openLeaderboard(ctx context.Context, conf config.Leaderboard, client *redis.Client) (repository.LeaderboardStore, func() error, error) {
	switch conf.Backend {
	case "redis":
		return repository.NewLeaderboardRepository(client), func() error { return nil }, nil
	case "sqlite":
		db, err := sqlite.New(conf.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err := db.Init(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("could not migrate sqlite storage: %w", err)
		}

		return repository.NewSQLiteLeaderboardRepository(db.Connection), db.Close, nil
	case "postgres":
		db, err := postgres.New(ctx, conf.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open postgres storage: %w", err)
		}

		if err := db.Init(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("could not migrate postgres storage: %w", err)
		}

		return repository.NewPostgresLeaderboardRepository(db.Pool), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, conf.Backend)
	}
}

func arcadeConfig(conf config.Arcade) arcade.Config {
	gameConfig := arcade.DefaultConfig()
	gameConfig.SpawnChance = conf.SpawnChance
	gameConfig.BaseSpeed = conf.BaseSpeed
	gameConfig.SpeedPerPoint = conf.SpeedPerPoint
	gameConfig.Reward = conf.Reward

	return gameConfig
}
