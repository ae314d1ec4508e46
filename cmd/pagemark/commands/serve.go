package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsawler/pagemark"
	"github.com/tsawler/pagemark/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion HTTP API",
	Long:  "Start an HTTP server accepting PDF uploads and returning Markdown, HTML or a zip archive.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scfg := cfg.Server
	if serveAddr != "" {
		scfg.Addr = serveAddr
	}
	conv := pagemark.New().WithConfig(cfg)
	return server.New(conv, scfg, logger).ListenAndServe(ctx)
}
