package cli_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/hazel/pkg/cli"
)

func TestRunReportsErrorKind(t *testing.T) {
	ctx := context.Background()

	// show without an ID fails validation before touching storage
	err := cli.Run(ctx, []string{"hazel", "show", "--db-path", ":memory:"})
	gt.V(t, err).NotNil()
	gt.Equal(t, err.Code, 1)
	gt.S(t, err.Message).Contains("error (validation)")
	gt.S(t, err.Message).Contains("memory ID is required")
}

func TestServeStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan *cli.Error, 1)
	go func() {
		done <- cli.Run(ctx, []string{
			"hazel", "serve",
			"--addr", "127.0.0.1:0",
			"--db-path", ":memory:",
		})
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		gt.V(t, err).Nil()
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after context cancellation")
	}
}
