package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AmeRaino/dompick/pkg/dompick"
	"github.com/AmeRaino/dompick/pkg/inspect"
)

// Run drives the interactive program over the session until the user quits
// or ctx is cancelled. The caller owns the session and closes it.
//
// Coordinator notifications arrive on whatever goroutine caused them,
// including the update loop itself, so the listener must never call into
// the program directly. It drops a token into a one-slot channel instead
// and a forwarder turns tokens into refresh messages; the model re-reads
// session state on each one, which makes coalescing safe.
func Run(ctx context.Context, session *dompick.Session) error {
	p := tea.NewProgram(NewModel(ctx, session), tea.WithAltScreen())

	wake := make(chan struct{}, 1)
	session.AddListener(inspect.ListenerFunc(func(inspect.Change, inspect.State) {
		select {
		case wake <- struct{}{}:
		default:
		}
	}))

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-wake:
				p.Send(refreshMsg{})
			case <-ctx.Done():
				p.Send(quitMsg{})
				return
			case <-done:
				return
			}
		}
	}()

	_, err := p.Run()
	return err
}
