package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boatbooking/internal/config"
	api "boatbooking/internal/http"
	"boatbooking/internal/repositories"
	"boatbooking/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the draft sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			utils.ConfigureLogger(env.LogLevel)
			if env.GinMode != "" {
				gin.SetMode(env.GinMode)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := buildApp(ctx, env)
			if err != nil {
				return err
			}
			defer a.Close()

			if migrateUp {
				if err := (repositories.BookingRepository{DB: a.db}).EnsureSchema(ctx); err != nil {
					return err
				}
			}

			srv := &http.Server{
				Addr:              env.AppAddr,
				Handler:           api.NewRouter(a.handler, api.RouterOptions{CORSAllowedOrigins: env.CORSAllowedOrigins}),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       60 * time.Second,
				WriteTimeout:      env.HTTPWriteTimeout,
				IdleTimeout:       60 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return a.sweeper.Run(gctx)
			})
			g.Go(func() error {
				utils.LogEvent("", "cli", "serve", "listening on "+env.AppAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				utils.LogEvent("", "cli", "serve", "shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "create the bookings table on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
