package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/w1xm/diseqc_interface/frontend/remote"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the local DVB frontend over HTTP",
	Long: `Serve the local DVB frontend to 'diseqc --remote' clients and stream its
status to websocket watchers on /api/ws. Requests are executed one at a
time.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8502", "address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	dev, name, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Close()
	logger.Infof("DVB frontend %s opened", name)

	server := remote.NewServer(dev, viper.GetString("password"))
	srv := &http.Server{
		Handler:     server.Handler(),
		Addr:        viper.GetString("addr"),
		ReadTimeout: 60 * time.Second,
		// No write timeout: a receive holds the response for as long as
		// the client's reply timeout.
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Listening on %v", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Wait for a signal or a listener failure, then drain.
		<-ctx.Done()
		server.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
