package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/horockey/kvrepo"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const (
	engineBadger = "badger"
	engineBolt   = "bolt"
)

const (
	flagEngine   = "engine"
	flagPath     = "path"
	flagWorkers  = "workers"
	flagLogLevel = "log-level"
)

type app struct {
	cfg    *viper.Viper
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := app{cfg: viper.New()}

	cmd := &cobra.Command{
		Use:          "kvrepo",
		Short:        "Inspect and edit a string keyed repository stored on disk",
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lvl, err := zerolog.ParseLevel(a.cfg.GetString(flagLogLevel))
			if err != nil {
				return fmt.Errorf("parsing log level: %w", err)
			}
			a.logger = zerolog.New(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: time.RFC3339,
			}).Level(lvl).
				With().
				Timestamp().
				Str("scope", "kvrepo").
				Logger()
			return nil
		},
	}

	a.cfg.SetEnvPrefix("KVREPO")
	a.cfg.AutomaticEnv()
	a.cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	flags := cmd.PersistentFlags()
	flags.String(flagEngine, engineBadger, "storage engine: badger or bolt")
	flags.String(flagPath, defaultPath(), "badger dir or bbolt file")
	flags.Int(flagWorkers, 5, "worker pool size") //nolint: mnd
	flags.String(flagLogLevel, zerolog.WarnLevel.String(), "log level")
	if err := a.cfg.BindPFlags(flags); err != nil {
		panic(err)
	}

	cmd.AddCommand(
		a.newPutCmd(),
		a.newGetCmd(),
		a.newListCmd(),
		a.newDelCmd(),
		a.newClearCmd(),
	)

	return cmd
}

func defaultPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, ".kvrepo")
}

type closableEngine interface {
	kvrepo.Engine
	Close() error
}

func (a *app) openEngine() (closableEngine, error) {
	path := a.cfg.GetString(flagPath)
	engineLogger := a.logger.With().Str("subscope", "engine").Logger()

	switch engine := a.cfg.GetString(flagEngine); engine {
	case engineBadger:
		return kvrepo.OpenBadgerEngine(path, engineLogger)
	case engineBolt:
		return kvrepo.OpenBoltEngine(path, engineLogger)
	default:
		return nil, fmt.Errorf("unknown engine: %q", engine)
	}
}

// withRepo runs fn against a repository opened for the duration of one command.
func (a *app) withRepo(fn func(repo *kvrepo.Repository[string, string]) error) (resErr error) {
	engine, err := a.openEngine()
	if err != nil {
		return fmt.Errorf("opening engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			resErr = multierr.Append(resErr, fmt.Errorf("closing engine: %w", err))
		}
	}()

	repo, err := kvrepo.New[string, string](
		engine,
		kvrepo.WithWorkersCount[string, string](a.cfg.GetInt(flagWorkers)),
		kvrepo.WithLogger[string, string](a.logger),
	)
	if err != nil {
		return fmt.Errorf("creating repository: %w", err)
	}
	defer repo.Close()

	return fn(repo)
}
