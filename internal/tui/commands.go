package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AmeRaino/dompick/pkg/dompick"
	"github.com/AmeRaino/dompick/pkg/genai"
)

// Every command closes over the generation counter current when it was
// issued. The model discards results whose generation is stale, so a
// superseded load or an abandoned stream can never overwrite newer state.

func loadCmd(ctx context.Context, s *dompick.Session, url string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		err := s.LoadURL(ctx, url)
		return loadedMsg{gen: gen, url: url, err: err}
	}
}

func generateCmd(ctx context.Context, s *dompick.Session, gen uint64) tea.Cmd {
	return func() tea.Msg {
		stream, err := s.GenerateScript(ctx)
		return streamMsg{gen: gen, kind: taskGenerate, stream: stream, err: err}
	}
}

func explainCmd(ctx context.Context, s *dompick.Session, gen uint64) tea.Cmd {
	return func() tea.Msg {
		stream, err := s.ExplainSelection(ctx)
		return streamMsg{gen: gen, kind: taskExplain, stream: stream, err: err}
	}
}

// readChunkCmd pulls exactly one chunk. The handler for chunkMsg issues the
// next pull, so the stream is consumed one message at a time and the UI
// repaints between chunks.
func readChunkCmd(stream genai.Stream, gen uint64) tea.Cmd {
	return func() tea.Msg {
		if stream.Next() {
			return chunkMsg{gen: gen, text: stream.Current()}
		}
		return streamDoneMsg{gen: gen, err: stream.Err()}
	}
}

func runCmd(ctx context.Context, s *dompick.Session, source string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		return runDoneMsg{gen: gen, result: s.RunScript(ctx, source)}
	}
}
