package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cobrosmart/internal/ai"
	"cobrosmart/internal/api"
	"cobrosmart/internal/collection"
	"cobrosmart/internal/config"
	"cobrosmart/internal/store"
)

type Server struct {
	http  *http.Server
	store *store.Store
}

// New wires the process: logger, datastore, generation client, pipeline and
// router. The returned server owns the datastore connection.
func New(cfg *config.Config) (*Server, error) {
	logger, err := newLogger(cfg.Environment)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	st, err := store.Open(context.Background(), cfg.PostgresURL)
	if err != nil {
		return nil, err
	}

	llm := ai.NewClient(cfg.AI())
	if !llm.Usable() {
		zap.L().Warn("generation service not configured, messages will use the local fallback")
	}

	pipeline := collection.NewPipeline(st, llm)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(cfg, st, pipeline),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Write timeout must outlast the generation timeout plus fallback work.
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{http: srv, store: st}, nil
}

func (s *Server) Start() error {
	zap.L().Info("api listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	_ = zap.L().Sync()
	return err
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
