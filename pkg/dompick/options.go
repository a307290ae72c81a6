package dompick

import (
	"github.com/AmeRaino/dompick/pkg/fetch"
	"github.com/AmeRaino/dompick/pkg/genai"
	"github.com/AmeRaino/dompick/pkg/surface"
	"github.com/AmeRaino/dompick/pkg/target"
)

// Option configures a Session at construction time.
type Option func(*Session)

// WithFetcher sets the page fetcher. Defaults to the static fetcher.
func WithFetcher(f fetch.Fetcher) Option {
	return func(s *Session) { s.fetcher = f }
}

// WithSurface attaches a live rendering surface. Loaded documents are
// rendered onto it and its interactions drive the selection state. Without
// one the session still loads, promotes, and generates, but cannot
// highlight or execute.
func WithSurface(surf surface.Surface) Option {
	return func(s *Session) { s.surf = surf }
}

// WithGenerator sets the AI collaborator. Defaults to the provider
// detected from the environment.
func WithGenerator(g genai.Generator) Option {
	return func(s *Session) { s.generator = g }
}

// WithTargets seeds the session with an existing target set, typically
// loaded from a targets file.
func WithTargets(set *target.Set) Option {
	return func(s *Session) {
		if set != nil {
			s.targets = set
		}
	}
}

// WithFetchOptions sets per-request fetch options: user agent, timeout,
// extra headers, cookies.
func WithFetchOptions(opts fetch.Options) Option {
	return func(s *Session) { s.fetchOpts = opts }
}

// WithObserver replaces the generation observer. The default logs each
// completed generation at debug level; pass a custom observer to export
// metrics or traces instead.
func WithObserver(obs genai.Observer) Option {
	return func(s *Session) { s.observer = obs }
}

// WithSnapshotLimit bounds the page snapshot handed to the generator, in
// bytes of cleaned markup.
func WithSnapshotLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.snapshotLimit = n
		}
	}
}
