package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	mcpservice "github.com/m-mizutani/hazel/pkg/service/mcp"
	"github.com/m-mizutani/hazel/pkg/utils/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  appConfig
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Serve MCP over streamable HTTP on this address instead of stdio",
			Sources:     cli.EnvVars("HAZEL_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server (stdio by default)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := cfg.newUseCase(ctx, c)
			if err != nil {
				return err
			}
			defer closer()

			server := mcpservice.New(uc)

			if addr != "" {
				handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
					return server
				}, nil)

				srv := &http.Server{Addr: addr, Handler: handler}
				errCh := make(chan error, 1)
				go func() {
					errCh <- srv.ListenAndServe()
				}()

				logging.Default().Info("starting MCP server", "addr", addr)

				select {
				case <-ctx.Done():
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						return goerr.Wrap(err, "http server shutdown failed", goerr.V("addr", addr))
					}
					return nil
				case err := <-errCh:
					if err != nil && !errors.Is(err, http.ErrServerClosed) {
						return goerr.Wrap(err, "http server failed", goerr.V("addr", addr))
					}
					return nil
				}
			}

			logging.Default().Info("starting MCP server on stdio")
			if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
				return goerr.Wrap(err, "mcp server failed")
			}
			return nil
		},
	}
}
