package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout API",
		Long: `Run the HTTP layout API.

  GET  /healthz               liveness probe
  POST /v1/layout?format=...  lay out a JSON document

Layouts are computed one at a time. Timeouts, the listen address and the
body size limit come from the [server] section of the config file.`,
		Example: `  swimlane serve --addr :9090
  curl -s --data @order.json localhost:9090/v1/layout?format=bpmn`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Listening on %s", StyleHighlight.Render(c.cfg.Server.Addr))
			return server.New(runner, c.cfg, c.Logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
