package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/learner/server"
	"github.com/hupe1980/learner/store"
)

type serveCommand struct {
	Port int    `short:"p" long:"port" description:"listen port; overrides the configuration"`
	Data string `short:"d" long:"data" description:"database file; overrides the configuration"`
}

func (c *serveCommand) Execute(_ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(bootstrapLogger())
	if err != nil {
		return err
	}

	if c.Port != 0 {
		cfg.Port = c.Port
	}

	if c.Data != "" {
		cfg.DataPath = c.Data
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	compression, err := store.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}

	bolt, err := store.OpenBolt(cfg.DataPath, func(o *store.BoltOptions) {
		o.Compression = compression
	})
	if err != nil {
		return err
	}

	var st store.Store = bolt

	if cfg.CacheBytes > 0 {
		cached, err := store.NewCached(bolt, cfg.CacheBytes)
		if err != nil {
			return errors.Join(err, bolt.Close())
		}

		st = cached
	}

	defer func() {
		if err := st.Close(); err != nil {
			log.Error("close store", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []func(o *server.Options){func(o *server.Options) {
		o.ReadThreads = cfg.ReadThreads
		o.ProcessThreads = cfg.ProcessThreads
		o.MaxFrameSize = cfg.MaxFrameSize
		o.MaxConnections = cfg.MaxConnections
		o.AcceptRate = cfg.AcceptRate
		o.Logger = log
		o.Metrics = server.NewPrometheusCollector(reg)
	}}

	if cfg.BackupTarget != "" {
		target, err := openTarget(ctx, cfg.BackupTarget)
		if err != nil {
			return err
		}

		opts = append(opts, func(o *server.Options) {
			o.Backup = server.BackupOptions{
				Target:   target,
				Prefix:   backupPrefix,
				Interval: cfg.BackupInterval,
				Keep:     cfg.BackupKeep,
			}
		})
	}

	srv, err := server.New(st, opts...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Address(), cfg.AcceptBacklog)
	})

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

		hs := &http.Server{Addr: cfg.MetricsAddress, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

		g.Go(func() error {
			log.Info("metrics listening", "address", cfg.MetricsAddress)

			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics: %w", err)
			}

			return nil
		})

		g.Go(func() error {
			<-gctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 5*time.Second)
			defer cancel()

			return hs.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()

	log.Info("server stopped", "error", err)

	return err
}
