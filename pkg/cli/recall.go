package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/usecase/memory"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

func recallCommand() *cli.Command {
	var (
		cfg        appConfig
		limit      int64
		outputJSON bool
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of results (defaults to similarity_top_k)",
			Destination: &limit,
		},
		&cli.BoolFlag{
			Name:        "json",
			Aliases:     []string{"j"},
			Usage:       "Output in JSON format",
			Destination: &outputJSON,
		},
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:      "recall",
		Usage:     "Retrieve memories similar to a query",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")

			uc, closer, err := cfg.newUseCase(ctx, c)
			if err != nil {
				return err
			}
			defer closer()

			input := memory.RecallInput{Query: query}
			if c.IsSet("limit") {
				n := int(limit)
				input.Limit = &n
			}

			var spin *spinner.Spinner
			if isatty.IsTerminal(os.Stderr.Fd()) {
				spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond,
					spinner.WithWriter(os.Stderr))
				spin.Suffix = " searching..."
				spin.Start()
			}

			results, err := uc.Recall(ctx, input)
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return goerr.Wrap(err, "failed to recall")
			}

			if outputJSON {
				return printJSON(c, results)
			}

			if len(results) == 0 {
				fmt.Fprintln(c.Root().Writer, "no matching memories")
				return nil
			}

			for _, hit := range results {
				fmt.Fprintf(c.Root().Writer, "%.4f\t%s\t%s\n",
					hit.Score, hit.Memory.ID, hit.Memory.Text)
			}
			return nil
		},
	}
}
