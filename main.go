package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nstehr/roomplan/ipc"
	"github.com/nstehr/roomplan/panel"
	"github.com/nstehr/roomplan/planner"
	"github.com/nstehr/roomplan/rules"
)

const banner = `
 ┏━┓┏━┓┏━┓┏┳┓┏━┓╻  ┏━┓┏┓╻
 ┣┳┛┃ ┃┃ ┃┃┃┃┣━┛┃  ┣━┫┃┗┫
 ╹┗╸┗━┛┗━┛╹ ╹╹  ┗━╸╹ ╹╹ ╹

Room Layout Constraint Engine`

func main() {
	socketPath := flag.String("socket", "/tmp/roomplan.sock", "unix socket path for framed clients")
	wsAddr := flag.String("ws", "", "websocket listen address, e.g. :8090 (empty disables)")
	rulesPath := flag.String("terrain-rules", "", "JSON file overriding the terrain compatibility table")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	localeDir := flag.String("locale-dir", "", "gettext locale directory for panel labels")
	lang := flag.String("lang", "en_US", "panel label language")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	if *localeDir != "" {
		panel.SetLocale(*localeDir, *lang)
		slog.Info("panel locale loaded", "dir", *localeDir, "lang", *lang)
	}

	engine, err := loadEngine(*rulesPath)
	if err != nil {
		slog.Error("failed to build placement engine", "error", err)
		os.Exit(1)
	}
	slog.Info("starting roomplan", "structures", len(engine.Catalog().Kinds()))

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(*socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", *socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(*socketPath)

	slog.Info("listening on domain socket", "path", *socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serve := func(c *ipc.Connection) {
		s := planner.NewSession(engine)
		if err := s.Start(c); err != nil {
			slog.Error("failed to send initial panel", "session", s.ID, "error", err)
			_ = c.Close()
			return
		}
		slog.Info("session started", "session", s.ID)
		c.ReadLoop()
		slog.Info("session ended", "session", s.ID)
	}

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go serve(ipc.NewStreamConnection(conn))
		}
	}()

	if *wsAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", ipc.WebsocketHandler(serve))
		srv := &http.Server{Addr: *wsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("listening for websocket clients", "addr", *wsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("websocket server failed", "error", err)
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")
}

func loadEngine(rulesPath string) (*rules.Engine, error) {
	terrainRules := rules.DefaultTerrainRules()
	if rulesPath != "" {
		data, err := os.ReadFile(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("read terrain rules: %w", err)
		}
		if terrainRules, err = rules.ParseTerrainRules(data); err != nil {
			return nil, err
		}
		slog.Info("terrain rules loaded", "path", rulesPath, "count", len(terrainRules))
	}
	return rules.NewEngine(rules.DefaultCatalog(), terrainRules)
}
