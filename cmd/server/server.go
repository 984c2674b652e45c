package main

import (
	"time"

	"github.com/filmpulse/arbiter/internal/config"
	"github.com/filmpulse/arbiter/internal/infrastructure"
	"github.com/filmpulse/arbiter/internal/moderation"
)

type Server struct {
	cfg     *config.Config
	infra   *infrastructure.Infrastructure
	modules *Modules
	sweeper *moderation.Sweeper
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	sweeper := moderation.NewSweeper(
		modules.Domain.Moderation,
		cfg.Moderation.SweepIntervalDuration(),
		infra.Logger,
	)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
	)

	return &Server{
		cfg:     cfg,
		infra:   infra,
		modules: modules,
		sweeper: sweeper,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	s.sweeper.Start(s.infra.Lifecycle)

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
