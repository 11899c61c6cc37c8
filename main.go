package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	app "github.com/rocketscienceinc/gamehub-backend/internal"
	"github.com/rocketscienceinc/gamehub-backend/internal/config"
	"github.com/rocketscienceinc/gamehub-backend/internal/repository"
	"github.com/rocketscienceinc/gamehub-backend/internal/repository/storage"
)

var (
	ErrEmptyJTI   = errors.New("token id is empty")
	ErrInvalidTTL = errors.New("revocation ttl must be positive")
)

type flags struct {
	configPath string
	logLevel   string
}

// main - is the entry point of the application. It parses flags, loads the configuration and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var opts flags

	cmd := &cobra.Command{
		Use:   "gamehub",
		Short: "Backend for the dragonball arcade, xandzero and their leaderboard.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			conf := initConfig(opts)
			logger := initLogger(conf)

			if err := app.RunApp(logger, conf); err != nil {
				return fmt.Errorf("app run failed: %w", err)
			}

			return nil
		},
	}

	cmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs := cmd.PersistentFlags()

	fs.StringVarP(&opts.configPath, "config", "c", "./config.yml", "path to the config file")
	fs.StringVar(&opts.logLevel, "log-level", "", "overrides log-level from the config file (debug, info, warn, error)")

	cmd.AddCommand(newRevokeCmd(&opts))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// newRevokeCmd adds a token id to the denylist the identity verifier consults.
func newRevokeCmd(opts *flags) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "revoke-token <jti>",
		Short: "Reject a token by its jti until it would have expired.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := initConfig(*opts)
			logger := initLogger(conf)

			redisStorage, err := storage.NewRedisStorage(cmd.Context(), conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
			if err != nil {
				return fmt.Errorf("could not connect to redis storage: %w", err)
			}
			defer redisStorage.Close()

			if err = revokeToken(cmd.Context(), repository.NewTokenDenylist(redisStorage.Connection), args[0], ttl); err != nil {
				return err
			}

			logger.Info("token revoked", "jti", args[0], "ttl", ttl)

			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "how long the revocation is kept, at least the token's remaining lifetime")

	return cmd
}

type tokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

func revokeToken(ctx context.Context, revoker tokenRevoker, jti string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" {
		return ErrEmptyJTI
	}

	if ttl <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	if err := revoker.Revoke(ctx, jti, ttl); err != nil {
		return fmt.Errorf("could not revoke token: %w", err)
	}

	return nil
}

// initialize config.
func initConfig(opts flags) *config.Config {
	conf := config.MustLoad(opts.configPath)

	if opts.logLevel != "" {
		conf.LogLevel = opts.logLevel
	}

	return conf
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
