package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/xsslab/pkg/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lab API and the preset files",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner(cmd.ErrOrStderr())
			srv := server.New(a.settings, a.loader(), a.log)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				if _, ok := <-sigChan; !ok {
					return
				}
				a.log.Info("Received interrupt, shutting down...")
				if err := srv.Shutdown(); err != nil {
					a.log.Err(err, "shutdown")
				}
			}()

			err := srv.Listen()
			signal.Stop(sigChan)
			close(sigChan)
			return err
		},
	}
	cmd.Flags().String("listen", "", "listen address (default from config)")
	cmd.Flags().Bool("auto-update", true, "render new sessions on every payload change")
	return cmd
}
