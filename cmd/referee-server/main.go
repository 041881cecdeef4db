package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sueca-referee/internal/config"
	"sueca-referee/internal/intake"
	"sueca-referee/internal/logging"
	"sueca-referee/internal/referee"
	"sueca-referee/internal/spectatorpush"
	"sueca-referee/internal/store"
	httptransport "sueca-referee/internal/transport/http"

	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const (
	janitorInterval = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	app, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(app.Log)
	defer logging.Close()
	cfg := app.Server

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := openStore(ctx, cfg)
	if st != nil {
		defer st.Close()
	}

	coord := referee.NewCoordinator(coordinatorOptions(cfg, st))

	if cfg.SpectatorPushEnabled {
		pushCfg, err := spectatorpush.ConfigFromServer(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("spectator push config failed")
		}
		push := spectatorpush.NewManager(pushCfg)
		if err := push.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("spectator push start failed")
		}
		coord.SetTableLifecycleObserver(push)
	}

	if cfg.NATSURL != "" {
		nc, feed, err := connectNATS(cfg, coord)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("nats intake failed")
		}
		defer nc.Drain()
		defer feed.Close()
	}

	coord.StartJanitor(ctx, janitorInterval)

	r := httptransport.NewRouter(st, cfg, app.Log, coord)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}
	if err := coord.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("table shutdown timed out")
	}
	log.Info().Msg("server stopped")
}

// openStore connects to Postgres when POSTGRES_DSN is set. Without it the
// referee runs in memory only.
func openStore(ctx context.Context, cfg config.ServerConfig) *store.Store {
	if cfg.PostgresDSN == "" {
		log.Info().Msg("no POSTGRES_DSN, round history disabled")
		return nil
	}
	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	return st
}

func coordinatorOptions(cfg config.ServerConfig, st *store.Store) referee.Options {
	rules, drain := cfg.TableRules()
	opts := referee.Options{
		Rules:             rules,
		Drain:             drain,
		IntakeBuffer:      cfg.IntakeBuffer,
		EventBufferSize:   cfg.EventBufferSize,
		IdleTimeout:       cfg.IdleTimeout(),
		ScanMinConfidence: cfg.ScanMinConfidence,
	}
	if st != nil {
		opts.Recorder = st
	}
	return opts
}

func connectNATS(cfg config.ServerConfig, coord *referee.Coordinator) (*natsgo.Conn, *intake.NATSFeed, error) {
	nc, err := natsgo.Connect(cfg.NATSURL,
		natsgo.Name("sueca-referee"),
		natsgo.MaxReconnects(-1),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	feed, err := intake.SubscribeNATS(nc, cfg.NATSSubjectPrefix, coord.SubmitCard)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	log.Info().Str("subject", feed.Subject("*")).Msg("nats card intake subscribed")
	return nc, feed, nil
}
