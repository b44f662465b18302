package main

import (
	"context"

	"github.com/desertthunder/songcart/internal/server"
	"github.com/desertthunder/songcart/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP interface until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := int(cmd.Int("port")); port > 0 {
		cfg.Port = port
	}

	engine, err := r.connect()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Addr:     cfg.Addr(),
		Engine:   engine,
		Identity: server.NewHeaderIdentity(cfg.UserHeader, cfg.EmailHeader),
		Limits: server.Limits{
			PageSize:    r.config.Catalog.PageSize,
			DisplaySize: r.config.Catalog.DisplaySize,
			ViewLimit:   r.config.Catalog.ViewLimit,
		},
		Logger: shared.WithLogger(r.logger, "component", "http"),
	})
	if err != nil {
		return err
	}

	return srv.ListenAndServe(ctx)
}
