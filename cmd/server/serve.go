package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-atlassian-gateway/internal/config"
	"github.com/jrsteele09/go-atlassian-gateway/server"
	"github.com/jrsteele09/go-atlassian-gateway/server/authflowrepo"
	"github.com/jrsteele09/go-atlassian-gateway/server/loginsession"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, config.New())
	},
}

func init() {
	serveCmd.Flags().String("port", "8080", "Port to listen on")
	_ = viper.BindPFlag(config.PortKey, serveCmd.Flags().Lookup("port"))
}

func run(ctx context.Context, c config.Config) error {
	displayAppname(c.GetAppName())

	sessions := loginsession.NewInMemoryLoginSessionRepo(c.GetSessionTTL())
	states := authflowrepo.NewInMemoryRepo(c.GetOAuthStateTTL())

	handler, err := server.New(c, sessions, states, &http.Client{Timeout: c.GetUpstreamTimeout()})
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	go handler.StartJanitor(ctx)

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(srv)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

func listenAndServe(srv *http.Server) error {
	log.Info().Str("addr", srv.Addr).Msg("server.listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe: %w", err)
	}
	return nil
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("server.stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
