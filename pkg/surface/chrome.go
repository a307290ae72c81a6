package surface

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"

	"github.com/AmeRaino/dompick/internal/logger"
)

// Config holds configuration for the browser surface.
type Config struct {
	Headless     bool
	UserAgent    string
	Timeout      time.Duration // per-action timeout
	ReadyTimeout time.Duration // fallback when the ready ping never arrives
	WindowWidth  int
	WindowHeight int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:     true,
		UserAgent:    defaultUserAgent,
		Timeout:      30 * time.Second,
		ReadyTimeout: 1500 * time.Millisecond,
		WindowWidth:  1280,
		WindowHeight: 900,
	}
}

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// eventBuffer bounds the interaction channel. Scroll bursts beyond it are
// dropped; every event is a full-state signal, so drops are safe.
const eventBuffer = 64

// Chrome renders documents in a Chrome page driven over the DevTools
// protocol. One page is reused across renders.
type Chrome struct {
	cfg         Config
	allocCancel context.CancelFunc
	pageCtx     context.Context
	pageCancel  context.CancelFunc

	events chan Event
	ready  chan struct{}
	done   chan struct{}

	mu     sync.Mutex // serializes page actions
	closed bool
}

// NewChrome launches a browser and prepares an empty page with the event
// binding registered. Call Close to release it.
func NewChrome(cfg Config) (*Chrome, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = DefaultConfig().ReadyTimeout
	}
	if cfg.WindowWidth == 0 || cfg.WindowHeight == 0 {
		cfg.WindowWidth = DefaultConfig().WindowWidth
		cfg.WindowHeight = DefaultConfig().WindowHeight
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)

	// chromedp's default lookup may miss the installed binary.
	if chromePath := FindChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	opts = append(opts, chromedp.UserAgent(cfg.UserAgent))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	pageCtx, cancelPage := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	c := &Chrome{
		cfg:         cfg,
		allocCancel: cancelAlloc,
		pageCtx:     pageCtx,
		pageCancel:  cancelPage,
		events:      make(chan Event, eventBuffer),
		ready:       make(chan struct{}, 1),
		done:        make(chan struct{}),
	}

	chromedp.ListenTarget(pageCtx, func(ev interface{}) {
		bc, ok := ev.(*runtime.EventBindingCalled)
		if !ok || bc.Name != BindingName {
			return
		}
		c.dispatch(bc.Payload)
	})

	// Start the browser with an empty action. The CDP session binds to the
	// context passed to the first Run, so it must not be a derived timeout
	// context that gets cancelled afterwards.
	startDone := make(chan error, 1)
	go func() { startDone <- chromedp.Run(pageCtx) }()
	select {
	case err := <-startDone:
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("start browser: %w", err)
		}
	case <-time.After(cfg.Timeout):
		c.Close()
		return nil, fmt.Errorf("start browser: timed out after %v", cfg.Timeout)
	}

	if err := chromedp.Run(pageCtx, runtime.AddBinding(BindingName)); err != nil {
		c.Close()
		return nil, fmt.Errorf("register binding: %w", err)
	}

	logger.Debug("surface ready",
		"headless", cfg.Headless,
		"window", fmt.Sprintf("%dx%d", cfg.WindowWidth, cfg.WindowHeight))

	return c, nil
}

func (c *Chrome) dispatch(payload string) {
	ev, err := ParseEvent(payload)
	if err != nil {
		logger.Debug("dropping surface event", "error", err)
		return
	}
	if ev.Kind == EventReady {
		select {
		case c.ready <- struct{}{}:
		default:
		}
		return
	}
	select {
	case <-c.done:
	case c.events <- ev:
	default:
	}
}

// Render replaces the page content and waits for the capture script to wire
// the new document. The ready ping is not guaranteed after programmatic
// content replacement, so a fixed fallback timeout also releases the wait.
func (c *Chrome) Render(ctx context.Context, docHTML, baseURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	docHTML = injectBase(docHTML, baseURL)

	// Drop a stale ping left over from a previous render.
	select {
	case <-c.ready:
	default:
	}

	tctx, cancel := context.WithTimeout(c.pageCtx, c.cfg.Timeout)
	defer cancel()

	err := chromedp.Run(tctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, docHTML).Do(ctx)
		}),
		chromedp.Evaluate(CaptureScript, nil),
	)
	if err != nil {
		c.saveDebugScreenshot()
		return fmt.Errorf("render failed: %w", err)
	}

	select {
	case <-c.ready:
	case <-time.After(c.cfg.ReadyTimeout):
		logger.Debug("ready ping missed, continuing after fallback",
			"timeout", c.cfg.ReadyTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	logger.Debug("render complete", "size", len(docHTML), "base", baseURL)
	return nil
}

// SetInspect toggles interaction capture and the crosshair cursor.
func (c *Chrome) SetInspect(ctx context.Context, on bool) error {
	var ok bool
	if err := c.Eval(ctx, setInspectJS(on), &ok); err != nil {
		return fmt.Errorf("set inspect: %w", err)
	}
	return nil
}

// BoundingBox returns the element's viewport rectangle.
func (c *Chrome) BoundingBox(ctx context.Context, id string) (Box, error) {
	var box *Box
	if err := c.Eval(ctx, boundingBoxJS(id), &box); err != nil {
		return Box{}, fmt.Errorf("bounding box: %w", err)
	}
	if box == nil {
		return Box{}, ErrNoElement
	}
	return *box, nil
}

// DrawHighlight positions the highlight of the given kind over the element.
// A vanished element hides the highlight instead of erroring.
func (c *Chrome) DrawHighlight(ctx context.Context, id string, kind HighlightKind) error {
	var drawn bool
	if err := c.Eval(ctx, drawHighlightJS(id, kind), &drawn); err != nil {
		return fmt.Errorf("draw %s highlight: %w", kind, err)
	}
	if !drawn {
		logger.Debug("highlight target gone", "id", id, "kind", kind.String())
	}
	return nil
}

// ClearHighlight hides the highlight of the given kind.
func (c *Chrome) ClearHighlight(ctx context.Context, kind HighlightKind) error {
	var ok bool
	if err := c.Eval(ctx, clearHighlightJS(kind), &ok); err != nil {
		return fmt.Errorf("clear %s highlight: %w", kind, err)
	}
	return nil
}

// Eval runs a JavaScript expression on the page. The result is unmarshalled
// into out when out is non-nil.
func (c *Chrome) Eval(ctx context.Context, js string, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	tctx, cancel := context.WithTimeout(c.pageCtx, c.cfg.Timeout)
	defer cancel()

	return chromedp.Run(tctx, chromedp.Evaluate(js, out))
}

// Events exposes interactions captured on the page.
func (c *Chrome) Events() <-chan Event {
	return c.events
}

// Close releases the page and the browser.
func (c *Chrome) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	if c.pageCancel != nil {
		c.pageCancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}
	logger.Debug("surface closed")
	return nil
}

// saveDebugScreenshot captures the page into a temp file for debugging.
// Failures are silent; the browser may already be in a bad state.
func (c *Chrome) saveDebugScreenshot() {
	captureCtx, cancel := context.WithTimeout(c.pageCtx, 5*time.Second)
	defer cancel()

	var shot []byte
	if err := chromedp.Run(captureCtx, chromedp.CaptureScreenshot(&shot)); err != nil {
		return
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("dompick-debug-%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, shot, 0o644); err == nil {
		logger.Debug("debug screenshot saved", "path", path)
	}
}

// injectBase inserts a <base href> tag so relative links in the document
// resolve against the page it was fetched from. The tag goes right after
// <head> when present, otherwise it is prepended.
func injectBase(docHTML, baseURL string) string {
	if baseURL == "" {
		return docHTML
	}
	tag := fmt.Sprintf(`<base href="%s">`, html.EscapeString(baseURL))
	if i := strings.Index(docHTML, "<head>"); i != -1 {
		at := i + len("<head>")
		return docHTML[:at] + tag + docHTML[at:]
	}
	return tag + docHTML
}
