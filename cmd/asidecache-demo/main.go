// Command asidecache-demo serves cached weather forecasts over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/asidecache"
	"github.com/unkn0wn-root/asidecache/codec"
	"github.com/unkn0wn-root/asidecache/envelope"
	asynchook "github.com/unkn0wn-root/asidecache/hooks/async"
	promhooks "github.com/unkn0wn-root/asidecache/hooks/prometheus"
	"github.com/unkn0wn-root/asidecache/internal/config"
	"github.com/unkn0wn-root/asidecache/internal/forecast"
	"github.com/unkn0wn-root/asidecache/internal/httpapi"
	slogadapter "github.com/unkn0wn-root/asidecache/log/slog"
	"github.com/unkn0wn-root/asidecache/sloghooks"
	"github.com/unkn0wn-root/asidecache/store"
	bigstore "github.com/unkn0wn-root/asidecache/store/bigcache"
	redisstore "github.com/unkn0wn-root/asidecache/store/redis"
	ristrettostore "github.com/unkn0wn-root/asidecache/store/ristretto"
)

func main() {
	configPath := flag.String("config", "", "path to a .yaml/.yml/.toml config file")
	originDelay := flag.Duration("origin-delay", 2*time.Second, "simulated forecast computation time")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, *originDelay, logger); err != nil {
		logger.Error("demo failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string, originDelay time.Duration, logger *slog.Logger) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, health, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := promhooks.New(reg, "asidecache")
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	hooks := asynchook.New(promhooks.Multi{
		metrics,
		sloghooks.New(logger, sloghooks.Options{StoreErrorEvery: 10}),
	}, 1, 4096)
	defer hooks.Close()

	env, err := envelopeFor(cfg.Cache.Envelope)
	if err != nil {
		return err
	}
	cache, err := asidecache.New(asidecache.Options[forecast.Result]{
		Store:              st,
		Codec:              codec.JSON[forecast.Result]{},
		Envelope:           env,
		Namespace:          cfg.Cache.Namespace,
		Logger:             slogadapter.New(logger),
		Hooks:              hooks,
		CacheDuration:      cfg.Cache.CacheDuration(),
		AbsoluteExpiration: cfg.Cache.AbsoluteExpiration(),
		OpTimeout:          cfg.Redis.OperationTimeout(),
		IsValid:            forecast.Result.Valid,
		Disabled:           cfg.Cache.Disabled,
	})
	if err != nil {
		_ = st.Close(context.Background())
		return err
	}

	h := &httpapi.Handler{
		Cache:   cache,
		Origin:  forecast.NewService(originDelay),
		Health:  health,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:  logger,
	}
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			slog.String("address", cfg.HTTP.Addr),
			slog.String("backend", cfg.Cache.Backend),
			slog.String("envelope", cfg.Cache.Envelope))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Shutdown())
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := cache.Close(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown completed")
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, func(context.Context) error, error) {
	switch cfg.Cache.Backend {
	case "", "redis":
		client, err := redisstore.Open(ctx, cfg.Redis.URL,
			redisstore.WithPoolSize(cfg.Redis.PoolSize),
			redisstore.WithRetry(cfg.Redis.ConnectAttempts, time.Second),
			redisstore.WithTimeouts(cfg.Redis.DialTimeout(), cfg.Redis.ReadTimeout(), cfg.Redis.WriteTimeout()),
		)
		if err != nil {
			return nil, nil, err
		}
		st, err := redisstore.New(redisstore.Config{Client: client, CloseClient: true})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return st, redisstore.Healthcheck(client), nil
	case "ristretto":
		st, err := ristrettostore.New(ristrettostore.Config{
			NumCounters: 1e5,
			MaxCost:     64 << 20,
			BufferItems: 64,
		})
		return st, nil, err
	case "bigcache":
		// bigcache evicts on one global window; keep bytes as long as the physical TTL
		st, err := bigstore.New(ctx, bigstore.Config{
			LifeWindow:         cfg.Cache.AbsoluteExpiration(),
			Shards:             64,
			MaxEntriesInWindow: 10000,
			MaxEntrySize:       1024,
			HardMaxCacheSizeMB: 64,
		})
		return st, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func envelopeFor(name string) (envelope.Codec, error) {
	switch name {
	case "", "cbor":
		return envelope.CBOR{}, nil
	case "msgpack":
		return envelope.Msgpack{}, nil
	case "json":
		return envelope.JSON{}, nil
	case "wire":
		return envelope.Wire{}, nil
	default:
		return nil, fmt.Errorf("unknown envelope %q", name)
	}
}
