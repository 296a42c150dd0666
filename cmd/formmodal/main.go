package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "formmodal",
		Short: "Inspect, render and serve declarative modal forms",
		Long: `formmodal loads modal form configurations from a directory, a remote
catalog or an OpenAPI document and lets you inspect, validate, render and
fill them in.

Environment Variables:
  FORMMODAL_DIR           configuration directory (default: modals)
  FORMMODAL_BASE_URL      remote catalog root serving /list and /<name>.json
  FORMMODAL_OPENAPI       OpenAPI document whose operations become modals
  FORMMODAL_HOOK_TIMEOUT  hook deadline, e.g. 10s (default: 30s)
  FORMMODAL_LOG_LEVEL     debug, info, warn or error
  FORMMODAL_ADDR          serve address (default: :8080)
  FORMMODAL_TEMPLATES     directory overriding the bundled HTML templates

Values are read from .env when present.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "dotenv file to load")
	root.PersistentFlags().StringVar(&a.flags.dir, "dir", "", "configuration directory")
	root.PersistentFlags().StringVar(&a.flags.baseURL, "base-url", "", "remote catalog root")
	root.PersistentFlags().StringVar(&a.flags.openapi, "openapi", "", "OpenAPI document path or URL")
	root.PersistentFlags().StringVar(&a.flags.templates, "templates", "", "directory overriding the bundled HTML templates")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newValidateCmd(a),
		newRenderCmd(a),
		newRunCmd(a),
		newServeCmd(a),
	)
	return root
}
