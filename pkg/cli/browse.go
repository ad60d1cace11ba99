package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/config"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/m-mizutani/hazel/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func browseCommand() *cli.Command {
	var cfg appConfig

	return &cli.Command{
		Name:  "browse",
		Usage: "Interactive shell to browse and edit memories",
		Flags: allFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := cfg.newUseCase(ctx, c)
			if err != nil {
				return err
			}
			defer closer()

			rl, err := readline.New("hazel> ")
			if err != nil {
				return goerr.Wrap(err, "failed to start readline")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintln(w, "Type 'help' for commands, 'exit' to quit.")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "readline failed")
				}

				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				if err := runBrowseCommand(ctx, uc, w, line); err != nil {
					// The shell keeps running; show kind and message only
					fmt.Fprintf(w, "error (%s): %s\n", model.ErrorKind(err), err.Error())
				}
			}

			return nil
		},
	}
}

func runBrowseCommand(ctx context.Context, uc *memory.UseCase, w io.Writer, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		fmt.Fprint(w, `commands:
  list                  list all memories
  show <id>             show one memory
  remember <text>       store a new memory
  recall <query>        similarity search
  edit <id> <text>      replace a memory's text
  rm <id>               delete a memory
  config                show effective configuration
  set <key> <value>     override a setting for this session
  exit                  quit
`)
		return nil

	case "list":
		records, err := uc.ListMemories(ctx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				rec.ID, rec.CreatedAt.Local().Format(time.DateTime), rec.Text)
		}
		return nil

	case "show":
		rec, err := uc.GetMemory(ctx, model.MemoryID(rest))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "id:         %s\n", rec.ID)
		fmt.Fprintf(w, "text:       %s\n", rec.Text)
		fmt.Fprintf(w, "created_at: %s\n", rec.CreatedAt.Local().Format(time.DateTime))
		fmt.Fprintf(w, "updated_at: %s\n", rec.UpdatedAt.Local().Format(time.DateTime))
		for key, val := range rec.Metadata {
			fmt.Fprintf(w, "meta.%s: %v\n", key, val.Any())
		}
		return nil

	case "remember":
		rec, err := uc.Remember(ctx, rest, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "stored %s\n", rec.ID)
		return nil

	case "recall":
		results, err := uc.Recall(ctx, memory.RecallInput{Query: rest})
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(w, "no matching memories")
			return nil
		}
		for _, hit := range results {
			fmt.Fprintf(w, "%.4f\t%s\t%s\n", hit.Score, hit.Memory.ID, hit.Memory.Text)
		}
		return nil

	case "edit":
		id, text, _ := strings.Cut(rest, " ")
		text = strings.TrimSpace(text)
		rec, err := uc.UpdateMemory(ctx, memory.UpdateInput{
			ID:   model.MemoryID(id),
			Text: &text,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "updated %s\n", rec.ID)
		return nil

	case "rm":
		if err := uc.DeleteMemory(ctx, model.MemoryID(rest)); err != nil {
			return err
		}
		fmt.Fprintf(w, "deleted %s\n", rest)
		return nil

	case "config":
		for _, key := range []config.Key{config.KeyDBPath, config.KeyEmbeddingModel, config.KeyLogLevel, config.KeySimilarityTopK} {
			val, err := uc.GetConfig(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s: %v\n", key, val)
		}
		return nil

	case "set":
		key, value, ok := strings.Cut(rest, " ")
		if !ok {
			return goerr.New("usage: set <key> <value>", goerr.T(model.TagValidation))
		}
		prev, err := uc.SetConfig(config.Key(key), strings.TrimSpace(value))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %v -> %v\n", key, prev, strings.TrimSpace(value))
		return nil

	default:
		return goerr.New("unknown command, type 'help'",
			goerr.T(model.TagValidation), goerr.V("command", cmd))
	}
}
