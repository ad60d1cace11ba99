package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "hazel",
		Usage: "Persistent semantic memory for AI coding assistants",
		Commands: []*cli.Command{
			rememberCommand(),
			recallCommand(),
			listCommand(),
			showCommand(),
			updateCommand(),
			deleteCommand(),
			configCommand(),
			browseCommand(),
			serveCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: fmt.Sprintf("error (%s): %s", model.ErrorKind(err), err.Error()),
		}
	}

	return nil
}
