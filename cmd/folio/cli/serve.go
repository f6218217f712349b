package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/folioapp/folio/internal/server"
)

const banner = `
  __       _ _
 / _| ___ | (_) ___
| |_ / _ \| | |/ _ \
|  _| (_) | | | (_) |
|_|  \___/|_|_|\___/
`

func newServeCmd() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Folio API server",
		Long:  "Start the HTTP server that exposes the admin, auth and public portfolio APIs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dev)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "HTTP listen port")
	cmd.Flags().String("host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().Bool("production", false, "Mark the session cookie Secure and require auth.jwt_secret")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (debug logging)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	viper.BindPFlag("server.production", cmd.Flags().Lookup("production"))

	return cmd
}

func runServe(dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	cfg := loadSettings()
	logger := newLogger(os.Stderr, cfg.Log, dev)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	logger.Info("store initialized", "driver", store.Driver(), "data_dir", resolveDataDir())

	svc, err := newServices(cfg, store, logger)
	if err != nil {
		store.Close()
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done, err := svc.Setup.IsComplete(ctx)
	if err != nil {
		logger.Warn("failed to check for admin", "error", err)
	}
	if !done {
		logger.Warn("no admin account found - POST /api/auth/setup or run: folio admin create")
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Server.Host
	srvCfg.Port = cfg.Server.Port
	srvCfg.Production = cfg.Server.Production
	srvCfg.CORSOrigins = cfg.Server.CORSOrigins
	srvCfg.AuthRateLimit = cfg.Auth.RateLimit
	srvCfg.PublicRateLimit = cfg.Server.RateLimit
	srvCfg.Version = versionString()

	srv := server.New(srvCfg, store, svc, logger)

	fmt.Printf("→ Folio %s\n", versionString())
	fmt.Printf("→ Listening on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ Public API: http://%s:%d/api\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ OpenAPI:    http://%s:%d/openapi.json\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ Health:     http://%s:%d/healthz\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()

	// ListenAndServe closes the store after draining.
	return srv.ListenAndServe()
}
