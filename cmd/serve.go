package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"forest-tools/api"
	"forest-tools/catalog"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve manifest records, the catalog and previews over HTTP",
	Long: `Serve the dataset read-only:
	GET /groups[?bbox=min_lon,min_lat,max_lon,max_lat][&season=winter]
	GET /groups/{id}
	GET /groups/{id}/mask.png
	GET /groups/{id}/images/{index}/preview.png[?size=256]
	GET /croissant[?format=yaml]
	GET /summary`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ds, err := openDataset(ctx)
		if err != nil {
			return err
		}
		info, err := catalog.LoadInfo(viper.GetString("infoFile"))
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              viper.GetString("addr"),
			Handler:           api.NewRouter(ds, catalog.NewDocument(info)),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			logrus.Warnf("Listening on %s", srv.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Address to listen on")
	bindFlag(serveCmd, "addr", "addr")
}
