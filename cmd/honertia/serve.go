package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/PatrickOgilvie/honertia/bootstrap"
	"github.com/PatrickOgilvie/honertia/config"
	"github.com/PatrickOgilvie/honertia/core/capability"
	"github.com/PatrickOgilvie/honertia/core/convention"
	"github.com/PatrickOgilvie/honertia/core/dispatch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server",
	Long: `Start the honertia server.

The server will:
  - Load configuration from honertia.yaml (or --config)
  - Or load configuration from HONERTIA_* environment variables
  - Open the database and create missing collection tables
  - Serve one bound resource route per schema collection

Environment variables (for Docker deployments):
  HONERTIA_DATABASE_PATH - SQLite database path
  HONERTIA_SERVER_PORT   - Server port (default: 8080)
  HONERTIA_AUTH_SECRET   - JWT signing secret
  HONERTIA_LOG_LEVEL     - Log level: debug, info, warn, error

Examples:
  honertia serve
  honertia serve --config /etc/honertia/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: cfgFile,
		Routes:     registerRoutes,
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	registerResourceRoutes(app.Registry, app.Config)

	return app.Run()
}

// registerRoutes registers the routes every deployment gets.
func registerRoutes(reg *dispatch.Registry) {
	reg.Handle("GET", "/healthz", func(ctx context.Context, caps *capability.Set) error {
		responder, err := caps.Responder()
		if err != nil {
			return err
		}
		return responder.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// registerResourceRoutes derives one show route per configured collection:
// GET /<collection>/{<singular>} responds with the bound record.
func registerResourceRoutes(reg *dispatch.Registry, cfg *config.Config) {
	for _, c := range cfg.Schema {
		param := convention.Singularize(c.Name)
		pattern := fmt.Sprintf("/%s/{%s}", c.Name, param)

		handler := showHandler(param)
		if convention.Pluralize(param) == c.Name {
			reg.Handle("GET", pattern, handler)
		} else {
			// Irregular names need an explicit collection override.
			reg.Handle("GET", pattern, handler, dispatch.WithCollection(param, c.Name))
		}
	}
}

func showHandler(param string) dispatch.Handler {
	return func(ctx context.Context, caps *capability.Set) error {
		models, err := caps.Models()
		if err != nil {
			return err
		}
		row, err := models.Get(param)
		if err != nil {
			return err
		}
		responder, err := caps.Responder()
		if err != nil {
			return err
		}
		return responder.JSON(http.StatusOK, row)
	}
}
