package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/api"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/broker"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/config"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/policy"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the embed token broker server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		gate, err := policy.Compile(cfg.ViewerPolicy)
		if err != nil {
			return fmt.Errorf("compiling viewer policy: %w", err)
		}

		httpClient := &http.Client{Timeout: cfg.RequestTimeout}
		brk := broker.New(cfg.InstanceURL, cfg.DashboardID, cfg.Identity(), httpClient)

		srv := api.NewServer(cfg, brk, gate)

		server := &http.Server{
			Addr:    cfg.Addr,
			Handler: srv.Routes(),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", cfg.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (overrides PORT)")
}
