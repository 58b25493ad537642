package headless

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/accesstbilq/jovian/pkg/chat"
	"github.com/accesstbilq/jovian/pkg/config"
	"github.com/accesstbilq/jovian/pkg/controllers"
	"github.com/accesstbilq/jovian/pkg/stream"
)

// Runner executes a single prompt against the chat backend and prints the
// streamed reply to the console.
type Runner struct {
	controller *controllers.ChatController
}

// NewRunner creates a runner wired from the global config
func NewRunner() (*Runner, error) {
	return newRunnerWithOutput(os.Stdout)
}

func newRunnerWithOutput(out io.Writer) (*Runner, error) {
	settings := config.Get()

	client := chat.NewClientWithTimeout(settings.ChatEndpoint(), settings.Server.Timeout)
	sink := stream.NewConsoleSink(stream.ConsoleOptions{
		Out:       out,
		Highlight: settings.UI.Highlight,
	})

	controller := controllers.NewChatController(client, sink,
		controllers.WithInterruptNotice(settings.UI.InterruptNotice))

	return &Runner{controller: controller}, nil
}

// Run submits one prompt and blocks until the stream ends or ctx is
// cancelled. Cancellation aborts the in-flight stream before returning.
func (r *Runner) Run(ctx context.Context, prompt string) error {
	done := r.controller.Submit(ctx, prompt)
	if done == nil {
		return fmt.Errorf("prompt cannot be empty in headless mode")
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.controller.Cancel()
		<-done
		return ctx.Err()
	}
}
