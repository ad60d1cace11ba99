package cli

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/urfave/cli/v3"
)

func rememberCommand() *cli.Command {
	var (
		cfg  appConfig
		meta []string
	)

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "meta",
			Usage:       "Metadata annotation as key=value (repeatable)",
			Destination: &meta,
		},
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:      "remember",
		Usage:     "Store a new memory",
		ArgsUsage: "<text>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.Join(c.Args().Slice(), " ")

			metadata, err := parseMetaFlags(meta)
			if err != nil {
				return err
			}

			uc, closer, err := cfg.newUseCase(ctx, c)
			if err != nil {
				return err
			}
			defer closer()

			rec, err := uc.Remember(ctx, text, metadata)
			if err != nil {
				return goerr.Wrap(err, "failed to remember")
			}

			return printJSON(c, rec)
		},
	}
}

// parseMetaFlags turns repeated key=value flags into typed metadata.
// Values that parse as booleans or numbers become those types.
func parseMetaFlags(pairs []string) (map[string]model.MetaValue, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	metadata := make(map[string]model.MetaValue, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, goerr.New("metadata must be key=value",
				goerr.T(model.TagValidation), goerr.V("pair", pair))
		}

		switch {
		case value == "true" || value == "false":
			metadata[key] = model.MetaBoolV(value == "true")
		default:
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				metadata[key] = model.MetaNum(n)
			} else {
				metadata[key] = model.MetaStr(value)
			}
		}
	}
	return metadata, nil
}

func printJSON(c *cli.Command, v any) error {
	encoder := json.NewEncoder(c.Root().Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
