package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/community-client/sessions"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

// watch keeps the session alive until interrupted: it refreshes the token when
// it expires, prints every session change and optionally serves the session
// metrics.
func watch(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("watch requires no arguments")
	}

	interval := c.Duration(flagInterval)
	if interval <= 0 {
		return errors.Errorf("invalid interval %s", interval)
	}

	displayAppname(env.cfg.GetAppName())

	if addr := c.String(flagMetricsAddr); addr != "" {
		server := &http.Server{
			Addr:              addr,
			Handler:           metricsHandler(env),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go listenAndServe(env, server)
		defer shutdown(env, server)
	}

	changes, unsubscribe := env.session.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	printSnapshot(env.session.Snapshot())
	for {
		select {
		case <-c.Context.Done():
			fmt.Println("Stopped watching.")
			return nil
		case snap, ok := <-changes:
			if !ok {
				return nil
			}
			printSnapshot(snap)
		case <-ticker.C:
			if !env.session.IsLoggedIn() {
				continue
			}
			if err := env.validToken(c.Context); err != nil {
				env.logger.Warn().Err(err).Msg("session could not be kept alive")
			}
		}
	}
}

func metricsHandler(env *environment) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(env.registry, promhttp.HandlerOpts{}))
	return mux
}

func listenAndServe(env *environment, server *http.Server) {
	env.logger.Info().Str("addr", server.Addr).Msg("serving metrics")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		env.logger.Error().Err(err).Msg("metrics server stopped")
	}
}

func shutdown(env *environment, server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		env.logger.Warn().Err(err).Msg("error shutting down metrics server")
	}
}

func printSnapshot(snap sessions.Snapshot) {
	st := newSessionStatus(snap)
	fmt.Printf("%s  %-10s user=%s community=%s posts=%d activities=%d events=%d\n",
		time.Now().Format(time.Kitchen),
		st.Status,
		displayName(st.Email, "-"),
		displayName(st.CommunityID, "-"),
		st.Posts,
		st.Activities,
		st.Events,
	)
}
