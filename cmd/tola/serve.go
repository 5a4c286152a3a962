package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tola-rs/tola/internal/tui"
)

// cachePersistInterval flushes the build cache periodically during
// `serve` rather than after every single batch, since the scheduler's
// event loop has no batch-complete signal to hook into (see
// actor.Coordinator.Persist's doc comment); a short interval bounds how
// much work a crash between flushes would force a recompile of.
const cachePersistInterval = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "build the site, then watch for changes and hot-reload connected browsers",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := workspaceRoot()
		cfg, coord, err := loadSite(root)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := coord.BuildAll(ctx); err != nil {
			return err
		}
		if err := coord.Persist(); err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/", http.FileServer(http.Dir(filepath.Join(root, cfg.Build.OutputDir))))

		wsAddr, err := wsListenAddr(cfg.Serve.Addr, cfg.Serve.WSPort)
		if err != nil {
			return err
		}
		wsMux := http.NewServeMux()
		wsMux.Handle("/__tola/ws", coord.WebSocketHandler())

		srv := &http.Server{Addr: cfg.Serve.Addr, Handler: mux}
		wsSrv := &http.Server{Addr: wsAddr, Handler: wsMux}

		srvErr := make(chan error, 2)
		go func() { srvErr <- srv.ListenAndServe() }()
		go func() { srvErr <- wsSrv.ListenAndServe() }()
		if logger != nil {
			logger.Info("serving", zap.String("addr", cfg.Serve.Addr), zap.String("ws_addr", wsAddr))
		}

		go periodicPersist(ctx, coord)

		runDone := make(chan struct{})
		go func() {
			defer close(runDone)
			_ = coord.Run(ctx)
		}()

		if cfg.Serve.Dashboard {
			if err := tui.Run(ctx, coord); err != nil && logger != nil {
				logger.Warn("dashboard exited with an error", zap.Error(err))
			}
			stop()
		} else {
			select {
			case <-ctx.Done():
			case err := <-srvErr:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					if logger != nil {
						logger.Error("http server failed", zap.Error(err))
					}
				}
				stop()
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = wsSrv.Shutdown(shutdownCtx)

		<-runDone
		return coord.Persist()
	},
}

// wsListenAddr derives the hot-reload websocket server's listen address
// from the main server's host and the configured ws_port, so both
// listeners bind the same interface (127.0.0.1 vs 0.0.0.0) without
// requiring it to be configured twice.
func wsListenAddr(mainAddr string, wsPort int) (string, error) {
	host, _, err := net.SplitHostPort(mainAddr)
	if err != nil {
		return "", fmt.Errorf("parse serve.addr %q: %w", mainAddr, err)
	}
	return net.JoinHostPort(host, strconv.Itoa(wsPort)), nil
}

func periodicPersist(ctx context.Context, coord interface{ Persist() error }) {
	ticker := time.NewTicker(cachePersistInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = coord.Persist()
		}
	}
}
