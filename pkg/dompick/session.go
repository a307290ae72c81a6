// Package dompick assembles the interactive scraping session: one loaded
// document, its live rendering, the shared selection state, the scrape
// target set, and the AI collaborator, behind a single facade.
//
// A Session survives failed operations. A fetch or render that errors
// leaves the previously loaded document fully usable, and a generation or
// script failure is reported in-band instead of tearing anything down.
package dompick

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/AmeRaino/dompick/internal/logger"
	"github.com/AmeRaino/dompick/pkg/domtree"
	"github.com/AmeRaino/dompick/pkg/fetch"
	"github.com/AmeRaino/dompick/pkg/genai"
	"github.com/AmeRaino/dompick/pkg/inspect"
	"github.com/AmeRaino/dompick/pkg/overlay"
	"github.com/AmeRaino/dompick/pkg/selector"
	"github.com/AmeRaino/dompick/pkg/surface"
	"github.com/AmeRaino/dompick/pkg/target"
)

// Error types for distinguishing failure reasons.
var (
	// ErrNoDocument indicates no document has been loaded yet.
	ErrNoDocument = errors.New("no document loaded")
	// ErrNoSelection indicates the operation needs a selected element.
	ErrNoSelection = errors.New("no element selected")
	// ErrNoTargets indicates script generation was requested with an empty
	// target set.
	ErrNoTargets = errors.New("no scrape targets defined")
)

// Session is the facade over one inspection workflow. All methods are safe
// for concurrent use; document loads are serialized and a load that is
// superseded before it completes is discarded rather than applied.
type Session struct {
	fetcher   fetch.Fetcher
	surf      surface.Surface
	generator genai.Generator
	observer  genai.Observer

	coord      *inspect.Coordinator
	positioner *overlay.Positioner
	targets    *target.Set

	fetchOpts     fetch.Options
	snapshotLimit int

	ctx    context.Context
	cancel context.CancelFunc

	// seq numbers document loads; only the latest may install its result.
	seq    atomic.Uint64
	loadMu sync.Mutex

	mu      sync.Mutex
	content *fetch.Content

	genMu        sync.Mutex
	activeStream genai.Stream

	pumpDone  chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New builds a session from the given options. Without options it fetches
// statically, renders nowhere, and picks the AI provider from the
// environment; supply WithSurface to get a live preview.
func New(opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		coord:         inspect.New(),
		targets:       target.NewSet(),
		snapshotLimit: genai.DefaultSnapshotLimit,
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.fetcher == nil {
		s.fetcher = fetch.NewStatic(fetch.DefaultStaticConfig())
	}
	if s.generator == nil {
		s.generator = detectGenerator()
	}
	if s.observer == nil {
		s.observer = genai.LogObserver()
	}

	if s.surf != nil {
		s.positioner = overlay.NewPositioner(ctx, s.surf)
		s.coord.AddListener(s.positioner)
		s.coord.AddListener(inspect.ListenerFunc(s.applyMode))

		s.pumpDone = make(chan struct{})
		go s.pump()
	}

	return s
}

// detectGenerator builds the provider named by the environment. With no
// credential configured anywhere this degrades to an empty chain, whose
// streams explain how to configure one.
func detectGenerator() genai.Generator {
	provider, apiKey := genai.Detect()
	cfg := genai.DefaultConfig()
	cfg.APIKey = apiKey
	gen, err := genai.New(provider, cfg)
	if err != nil {
		return genai.NewChain()
	}
	return gen
}

// LoadURL fetches the page and installs it as the current document. The
// raw value may omit the scheme; https is assumed. On any failure the
// previously loaded document stays in place.
func (s *Session) LoadURL(ctx context.Context, rawURL string) error {
	url := fetch.NormalizeURL(rawURL)
	seq := s.seq.Add(1)

	content, err := s.fetcher.Fetch(ctx, url, s.fetchOpts)
	if err != nil {
		logger.Warn("load failed", "url", url, "error", err)
		return fmt.Errorf("load %s: %w", url, err)
	}

	if s.fetcher.Type() == "static" && fetch.LooksDynamic(content.HTML) {
		logger.Warn("page appears to render client-side; the snapshot may be incomplete", "url", url)
	}

	return s.install(ctx, seq, content)
}

// LoadHTML installs raw markup as the current document, bypassing any
// fetching. Relative links will not resolve; there is no base URL.
func (s *Session) LoadHTML(ctx context.Context, raw string) error {
	seq := s.seq.Add(1)
	return s.install(ctx, seq, &fetch.Content{HTML: raw, FetchedAt: time.Now()})
}

// install builds the tree, renders it, and commits it as current state.
// Installs are serialized; one whose sequence number has been superseded
// while it was fetching or rendering is dropped without side effects.
func (s *Session) install(ctx context.Context, seq uint64, content *fetch.Content) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.seq.Load() != seq {
		logger.Debug("discarding superseded load", "url", content.URL, "seq", seq)
		return nil
	}

	tree, err := domtree.Build(content.HTML)
	if err != nil {
		return fmt.Errorf("build document tree: %w", err)
	}

	if s.surf != nil {
		if err := s.surf.Render(ctx, tree.HTML, content.URL); err != nil {
			logger.Warn("render failed", "url", content.URL, "error", err)
			return fmt.Errorf("render document: %w", err)
		}
	}

	s.mu.Lock()
	s.content = content
	s.mu.Unlock()

	// Clears selection and hover along with the tree swap.
	s.coord.ReplaceTree(tree)

	logger.Info("document loaded", "url", content.URL, "title", content.Title)
	return nil
}

// Select marks the element or text run with the given id as selected. An
// id the current document does not contain clears the selection instead.
func (s *Session) Select(id string) { s.coord.Select(id) }

// Hover marks the element under the pointer. Resolution rules match Select.
func (s *Session) Hover(id string) { s.coord.Hover(id) }

// SetMode switches between inspect and interact.
func (s *Session) SetMode(m inspect.Mode) { s.coord.SetMode(m) }

// ToggleMode flips the mode and returns the new one.
func (s *Session) ToggleMode() inspect.Mode { return s.coord.ToggleMode() }

// State returns the current selection snapshot.
func (s *Session) State() inspect.State { return s.coord.State() }

// AddListener registers l for selection, hover, mode, and tree changes.
func (s *Session) AddListener(l inspect.Listener) { s.coord.AddListener(l) }

// Tree returns the current document tree, nil before the first load.
func (s *Session) Tree() *domtree.Tree { return s.coord.Tree() }

// Document returns the currently installed page content, nil before the
// first load. Callers must not mutate it.
func (s *Session) Document() *fetch.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// URL returns the address of the current document, "" for inline markup.
func (s *Session) URL() string {
	if c := s.Document(); c != nil {
		return c.URL
	}
	return ""
}

// Generator returns the AI collaborator the session generates with.
func (s *Session) Generator() genai.Generator { return s.generator }

// Targets returns the scrape targets in declaration order.
func (s *Session) Targets() []target.Target { return s.targets.List() }

// TargetSet returns the live target set, for persistence.
func (s *Session) TargetSet() *target.Set { return s.targets }

// PromoteSelection turns the selected node into a scrape target. The
// selector is searched in the live document first, synthesized from the
// tree when the search fails, and degraded to a fixed sentinel when both
// strategies fail; promotion itself only fails without a selection or a
// valid field name.
func (s *Session) PromoteSelection(name, description string) (target.Target, error) {
	st := s.coord.State()
	if st.Tree == nil || st.SelectedID == "" {
		return target.Target{}, ErrNoSelection
	}
	node := st.Tree.Find(st.SelectedID)
	if node == nil {
		return target.Target{}, ErrNoSelection
	}

	if description == "" {
		description = target.DefaultDescription
	}
	t := target.Target{
		NodeID:      st.SelectedID,
		Selector:    selectorFor(st.Tree, st.SelectedID),
		Name:        name,
		Description: description,
		Example:     target.ExampleValue(node.TextContent()),
	}
	if err := s.targets.Add(t); err != nil {
		return target.Target{}, err
	}

	logger.Info("target added", "name", t.Name, "selector", t.Selector)
	return t, nil
}

// RemoveTarget deletes the target at position i.
func (s *Session) RemoveTarget(i int) error { return s.targets.RemoveAt(i) }

// selectorFor resolves a selector for id with decreasing precision.
func selectorFor(tree *domtree.Tree, id string) string {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(tree.HTML)); err == nil {
		if sel, err := selector.FindUnique(doc, id); err == nil {
			return sel
		}
	}
	if sel := selector.Synthesize(tree, id); sel != "" {
		return sel
	}
	return selector.Unresolved
}

// GenerateScript streams an extraction script for the current targets
// against the current document. Starting a new generation closes the
// stream of the previous one.
func (s *Session) GenerateScript(ctx context.Context) (genai.Stream, error) {
	content := s.Document()
	if content == nil {
		return nil, ErrNoDocument
	}
	if s.targets.Len() == 0 {
		return nil, ErrNoTargets
	}

	doc := genai.Prepare(content.HTML, s.snapshotLimit)
	req := genai.Request{Messages: genai.ScriptMessages(doc, s.targets)}
	return s.startGeneration(ctx, req), nil
}

// ExplainSelection streams a prose description of the selected element.
func (s *Session) ExplainSelection(ctx context.Context) (genai.Stream, error) {
	st := s.coord.State()
	if st.Tree == nil || st.SelectedID == "" {
		return nil, ErrNoSelection
	}

	outer, err := elementHTML(st.Tree, st.SelectedID)
	if err != nil {
		return nil, err
	}
	req := genai.Request{Messages: genai.ExplainMessages(outer)}
	return s.startGeneration(ctx, req), nil
}

// startGeneration swaps the active stream. Streams are finite and not
// restartable, so the superseded one is simply closed.
func (s *Session) startGeneration(ctx context.Context, req genai.Request) genai.Stream {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.activeStream != nil {
		s.activeStream.Close()
	}
	stream := genai.Observe(ctx, s.generator.Generate(ctx, req), s.observer, genai.GenerationEvent{
		Provider: s.generator.Name(),
		Model:    s.generator.Model(),
		Messages: req.Messages,
	})
	s.activeStream = stream
	return stream
}

// RunScript executes a generated extraction script against the rendered
// document. Failures of any kind come back inside the result, never as a
// crash or an error.
func (s *Session) RunScript(ctx context.Context, source string) surface.ExecResult {
	if s.surf == nil {
		return surface.ExecResult{
			Error:   "no rendering surface",
			Details: "script execution needs a live document; start the session with a surface",
		}
	}
	return surface.ExecuteScript(ctx, s.surf, source)
}

// Close releases the surface, the fetcher, and any in-flight generation.
// Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()

		s.genMu.Lock()
		if s.activeStream != nil {
			s.activeStream.Close()
			s.activeStream = nil
		}
		s.genMu.Unlock()

		var errs []error
		if s.surf != nil {
			if err := s.surf.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close surface: %w", err))
			}
			<-s.pumpDone
		}
		if err := s.fetcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close fetcher: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// pump forwards surface interactions into the coordinator, one event at a
// time so listener dispatch stays serialized.
func (s *Session) pump() {
	defer close(s.pumpDone)
	events := s.surf.Events()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-events:
			s.route(ev)
		}
	}
}

func (s *Session) route(ev surface.Event) {
	switch ev.Kind {
	case surface.EventHover:
		s.coord.Hover(ev.ID)
	case surface.EventSelect:
		s.coord.Select(ev.ID)
	case surface.EventScroll, surface.EventResize:
		s.positioner.Refresh()
	default:
		// The ready ping is consumed by the surface during Render.
	}
}

// applyMode mirrors mode changes onto the page: inspect mode captures
// pointer events, interact mode hands the page back to the user.
func (s *Session) applyMode(c inspect.Change, st inspect.State) {
	if c != inspect.ChangeMode {
		return
	}
	if err := s.surf.SetInspect(s.ctx, st.Mode == inspect.ModeInspect); err != nil {
		logger.Warn("mode switch not applied to surface", "mode", st.Mode.String(), "error", err)
	}
}

// elementHTML extracts the node's markup from the annotated document with
// the injected identifier attributes stripped back out. Text runs resolve
// through their owning element.
func elementHTML(tree *domtree.Tree, id string) (string, error) {
	id = domtree.ElementAncestorID(id)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tree.HTML))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	sel := doc.Find(fmt.Sprintf("[%s=%q]", domtree.IDAttr, id)).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("element %s is not in the current document", id)
	}
	sel.Find("[" + domtree.IDAttr + "]").RemoveAttr(domtree.IDAttr)
	sel.RemoveAttr(domtree.IDAttr)
	return goquery.OuterHtml(sel)
}
