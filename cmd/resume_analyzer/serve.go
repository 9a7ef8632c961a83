package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/server"
	"github.com/jonathan/resume-analyzer/internal/server/middleware"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes résumé analysis, upload and job requirements endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT, default 8080)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

// loadAuth returns the token validator, or nil when JWT_SECRET is unset.
func loadAuth() (middleware.TokenValidator, error) {
	jwtConfig, err := config.NewJWTConfig()
	if errors.Is(err, config.ErrJWTSecretMissing) {
		logger.Warn().Msg("JWT_SECRET not set; write endpoints are unauthenticated")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	return server.NewJWTService(jwtConfig).AsTokenValidator(), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	port := cfg.Port
	if servePort > 0 {
		port = servePort
	}

	auth, err := loadAuth()
	if err != nil {
		return err
	}

	d, err := openDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	if serveMigrate && d.db != nil {
		applied, err := d.db.Migrate(ctx)
		if err != nil {
			return err
		}
		logger.Info().Strs("applied", applied).Msg("migrations complete")
	}

	srvCfg := server.Config{
		Port:           port,
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		Service:        d.service,
		Requirements:   d.provider,
		Auth:           auth,
		HealthChecks:   d.healthChecks(),
	}
	if d.db != nil {
		srvCfg.Resumes = d.db
		srvCfg.RequirementsStore = d.db
	}
	if d.objects != nil {
		srvCfg.Objects = d.objects
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
