package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"cancelflow/config"
	"cancelflow/database"
	"cancelflow/router"

	authCtrlImp "cancelflow/pkg/auth/controllerImp"
	cancelCtrlImp "cancelflow/pkg/cancellation/controllerImp"
	cancelRepoImp "cancelflow/pkg/cancellation/repositoryImp"
	cancelSvcImp "cancelflow/pkg/cancellation/serviceImp"
	healthCtrlImp "cancelflow/pkg/health/controllerImp"
	"cancelflow/pkg/report"
	reportCtrlImp "cancelflow/pkg/report/controllerImp"
	subRepoImp "cancelflow/pkg/subscription/repositoryImp"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			if port != "" {
				cfg.Port = port
			}
			db, err := database.OpenSQLite(cfg.DBPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, NewServer(db, cfg), ":"+cfg.Port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

// NewServer wires repositories, services and controllers onto a new echo
// instance.
func NewServer(db *gorm.DB, cfg config.AppConfig) *echo.Echo {
	subRepo := subRepoImp.New(db)
	cancelRepo := cancelRepoImp.New(db)

	cancelSvc := cancelSvcImp.NewCancellationService(subRepo, cancelRepo)
	cancelCtrl := cancelCtrlImp.New(cancelSvc)
	reportCtrl := reportCtrlImp.New(report.NewBuilder(cancelRepo, subRepo))
	authCtrl := authCtrlImp.NewAuthController()
	hCtrl := healthCtrlImp.NewHealthCtrl(db)

	return router.New(
		echo.New(),
		router.Options{DevLogin: cfg.EnableDevLogin, HeaderAuth: cfg.EnableHeaderAuth},
		cancelCtrl,
		reportCtrl,
		authCtrl,
		hCtrl,
	)
}

func serve(ctx context.Context, e *echo.Echo, addr string) error {
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
