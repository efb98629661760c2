// Package server 以 HTTP API 提供分析与快照查询。
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/CodMac/go-treesitter-coupling-analyzer/analyzer"
	"github.com/CodMac/go-treesitter-coupling-analyzer/store"
)

type Server struct {
	opts   analyzer.Options
	store  store.Store
	logger *slog.Logger

	startTime time.Time
}

// New opts 为默认分析选项，单个请求可以覆盖语言
func New(opts analyzer.Options, st store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		opts:      opts,
		store:     st,
		logger:    logger,
		startTime: time.Now(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /snapshots", s.handleListSnapshots)
	mux.HandleFunc("GET /snapshots/{id}", s.handleGetSnapshot)
	// Go 类名含有 '/'，用尾部通配
	mux.HandleFunc("GET /snapshots/{id}/classes/{class...}", s.handleGetClass)
	return Cors(mux)
}

// ListenAndServe 阻塞直到 ctx 结束，然后优雅关闭
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
