package main

import (
	"context"

	"github.com/jrsteele09/community-client/api"
	"github.com/jrsteele09/community-client/auth"
	"github.com/jrsteele09/community-client/internal/config"
	"github.com/jrsteele09/community-client/internal/logging"
	"github.com/jrsteele09/community-client/sessions"
	"github.com/jrsteele09/community-client/storage"
	"github.com/jrsteele09/community-client/storage/file"
	"github.com/jrsteele09/community-client/storage/redis"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// environment is everything a command needs, built from config and restored
// from the session store.
type environment struct {
	cfg      config.Config
	logger   zerolog.Logger
	store    storage.Store
	client   *api.Client
	session  *sessions.Manager
	auth     *auth.Service
	registry *prometheus.Registry
	closers  []func() error
}

// newEnvironment wires the client stack and restores the persisted session.
// With preload set, a valid session fetches its feeds in the background.
func newEnvironment(c *cli.Context, preload bool) (*environment, error) {
	cfg := config.New()
	logger := logging.New(cfg)
	if c.Bool(flagVerbose) {
		logger = logger.Level(zerolog.DebugLevel)
	}

	env := &environment{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	store, closer, err := openStore(cfg, c.String(flagPassphrase))
	if err != nil {
		return nil, err
	}
	env.store = store
	if closer != nil {
		env.closers = append(env.closers, closer)
	}

	env.client = api.NewClient(
		cfg.GetAPIURL(),
		api.WithTimeout(cfg.GetRequestTimeout()),
		api.WithLogger(logger.With().Str("component", "api").Logger()),
	)

	opts := []sessions.ManagerOption{
		sessions.WithLogger(logger.With().Str("component", "session").Logger()),
		sessions.WithMetrics(env.registry),
	}
	if preload {
		opts = append(opts,
			sessions.WithPreloader(env.client),
			sessions.WithPreloadTimeout(cfg.GetPreloadTimeout()),
		)
	}
	env.session, err = sessions.NewManager(store, env.client, opts...)
	if err != nil {
		env.close()
		return nil, errors.Wrap(err, "error creating session manager")
	}
	env.closers = append(env.closers, func() error {
		env.session.Close()
		return nil
	})

	env.auth, err = auth.NewService(
		env.client,
		env.session,
		auth.WithLogger(logger.With().Str("component", "auth").Logger()),
	)
	if err != nil {
		env.close()
		return nil, errors.Wrap(err, "error creating auth service")
	}

	status := env.session.Restore(c.Context)
	logger.Debug().Str("status", status.String()).Msg("session restored")
	return env, nil
}

func openStore(cfg config.Config, passphrase string) (storage.Store, func() error, error) {
	if passphrase == "" {
		passphrase = cfg.GetStorePassphrase()
	}
	switch cfg.GetStoreType() {
	case config.StoreTypeRedis:
		store, err := redis.Dial(cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisNamespace())
		if err != nil {
			return nil, nil, errors.Wrap(err, "error connecting to the redis session store")
		}
		return store, store.Close, nil
	case config.StoreTypeFile, "":
		var opts []file.Option
		if passphrase != "" {
			opts = append(opts, file.WithPassphrase(passphrase))
		}
		store, err := file.New(file.DefaultPath(cfg.GetDataFolder()), opts...)
		if err != nil {
			return nil, nil, errors.Wrap(err, "error opening the session file")
		}
		return store, nil, nil
	default:
		return nil, nil, errors.Errorf("unknown store type %q", cfg.GetStoreType())
	}
}

// validToken returns a usable access token, refreshing it first if needed.
func (e *environment) validToken(ctx context.Context) error {
	_, err := e.session.ValidToken(ctx)
	return err
}

func (e *environment) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Warn().Err(err).Msg("error releasing resource")
		}
	}
	e.closers = nil
}

// withEnvironment adapts a command body that needs the wired client stack.
func withEnvironment(fn func(*cli.Context, *environment) error) cli.ActionFunc {
	return environmentAction(fn, false)
}

// withPreloadingEnvironment is withEnvironment for commands that establish or
// keep a session and so refresh the cached feeds.
func withPreloadingEnvironment(fn func(*cli.Context, *environment) error) cli.ActionFunc {
	return environmentAction(fn, true)
}

func environmentAction(fn func(*cli.Context, *environment) error, preload bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		env, err := newEnvironment(c, preload)
		if err != nil {
			return err
		}
		defer env.close()
		return fn(c, env)
	}
}
