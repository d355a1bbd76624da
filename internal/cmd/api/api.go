// Package api runs the combat HTTP server.
package api

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/pefman/squad-combat/internal/config"
	"github.com/pefman/squad-combat/internal/server"
	"github.com/pefman/squad-combat/internal/stats"
	"github.com/pefman/squad-combat/internal/telemetry"
)

const serviceName = "squad-combat-api"

// Config holds the server command configuration.
type Config struct {
	Port            string        `env:"PORT"                           envDefault:"8080"`
	Addr            string        `env:"SQUAD_COMBAT_ADDR"`
	MaxRounds       int           `env:"SQUAD_COMBAT_MAX_ROUNDS"        envDefault:"1000"`
	StreamDelay     time.Duration `env:"SQUAD_COMBAT_STREAM_DELAY"`
	ShutdownTimeout time.Duration `env:"SQUAD_COMBAT_SHUTDOWN_TIMEOUT"  envDefault:"5s"`
	DailyReset      time.Duration `env:"SQUAD_COMBAT_DAILY_RESET"       envDefault:"24h"`

	Telemetry telemetry.Config
}

// ParseConfig parses env then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address (overrides -port)")
	fs.StringVar(&cfg.Port, "port", cfg.Port, "listen port")
	fs.IntVar(&cfg.MaxRounds, "max-rounds", cfg.MaxRounds, "round cap for every combat (0 for no cap)")
	fs.DurationVar(&cfg.StreamDelay, "stream-delay", cfg.StreamDelay, "pause between streamed websocket events")
	fs.StringVar(&cfg.Telemetry.Endpoint, "otel-endpoint", cfg.Telemetry.Endpoint, "OTLP HTTP endpoint for traces")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.MaxRounds < 0 {
		return Config{}, errors.New("max-rounds must not be negative")
	}
	return cfg, nil
}

// ListenAddr resolves the address the server binds to.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return ":" + c.Port
}

// Run serves until ctx ends, then shuts down gracefully.
func Run(ctx context.Context, cfg Config, errOut io.Writer) error {
	if errOut == nil {
		errOut = io.Discard
	}
	logger := log.New(errOut, "", log.LstdFlags)

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Printf("api: telemetry shutdown: %v", err)
		}
	}()

	srv := server.New(server.Config{
		MaxRounds:   cfg.MaxRounds,
		StreamDelay: cfg.StreamDelay,
		Logger:      logger,
	})
	go resetDaily(ctx, srv.Stats(), cfg.DailyReset)

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr(), err)
	}
	return serve(ctx, ln, srv.Handler(), cfg.ShutdownTimeout, logger)
}

func serve(ctx context.Context, ln net.Listener, handler http.Handler, shutdownTimeout time.Duration, logger *log.Logger) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	logger.Printf("api: listening on %s", ln.Addr())
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Printf("api: stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func resetDaily(ctx context.Context, store *stats.Store, every time.Duration) {
	if every <= 0 {
		return
	}
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			store.ResetDaily()
		}
	}
}
