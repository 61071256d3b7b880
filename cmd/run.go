package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jandubois/droidlaunch/internal/config"
	"github.com/jandubois/droidlaunch/internal/lifecycle"
)

// runForeground starts one tool, streams its output to stdout, and stops it
// when ctx is cancelled. A tool that fails is reported as an error.
func runForeground(ctx context.Context, file config.File, tool lifecycle.Tool, command []string) error {
	dispatcher := newDispatcher(file.Notify)
	defer dispatcher.Wait()

	final := make(chan lifecycle.Event, 1)
	manager := lifecycle.NewManager(lifecycle.Options{
		Sink: lifecycle.NewWriterSink(os.Stdout),
		Notifier: lifecycle.NotifierFunc(func(ev lifecycle.Event) {
			dispatcher.Notify(ev)
			if ev.State != lifecycle.StateStarted {
				final <- ev
			}
		}),
	})

	if _, err := manager.Start(tool, command); err != nil {
		return err
	}

	if err := manager.Wait(ctx, tool); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			manager.StopAll()
			return nil
		case !errors.Is(err, lifecycle.ErrNotRunning):
			return err
		}
	}

	if ev := <-final; ev.State == lifecycle.StateFailed {
		return fmt.Errorf("%s exited with code %d", tool, ev.ExitCode)
	}
	return nil
}
