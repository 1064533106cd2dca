package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/docrunner/docrunner/internal/domain"
)

// ChromeOptions configure the chromedp-backed driver.
type ChromeOptions struct {
	Headless           bool
	ViewportWidth      int
	ViewportHeight     int
	NavigationTimeout  time.Duration
	InteractionTimeout time.Duration
}

// ChromeDriver drives a Chrome instance over the DevTools protocol. One
// allocator is shared; each session gets a fresh browser context so cases
// stay isolated.
type ChromeDriver struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	opts        ChromeOptions
	log         *logrus.Logger
}

// NewChrome creates the driver. The browser process itself starts lazily with
// the first session.
func NewChrome(opts ChromeOptions, log *logrus.Logger) *ChromeDriver {
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = 1280
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = 800
	}
	if opts.NavigationTimeout == 0 {
		opts.NavigationTimeout = 15 * time.Second
	}
	if opts.InteractionTimeout == 0 {
		opts.InteractionTimeout = 10 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return &ChromeDriver{allocCtx: allocCtx, allocCancel: cancel, opts: opts, log: log}
}

// NewSession opens a fresh browser context and verifies the browser is
// reachable before handing it to the orchestrator.
func (d *ChromeDriver) NewSession(ctx context.Context) (Session, error) {
	tabCtx, cancel := chromedp.NewContext(d.allocCtx)
	probe, probeCancel := context.WithTimeout(tabCtx, d.opts.NavigationTimeout)
	defer probeCancel()
	if err := chromedp.Run(probe,
		chromedp.EmulateViewport(int64(d.opts.ViewportWidth), int64(d.opts.ViewportHeight)),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("starting browser context: %w", err)
	}
	return &chromeSession{ctx: tabCtx, cancel: cancel, opts: d.opts}, nil
}

// Close tears down the browser process.
func (d *ChromeDriver) Close() error {
	d.allocCancel()
	return nil
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   ChromeOptions
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}

// run executes actions under a bounded deadline and classifies failures as
// automation faults. Deadline hits are transient (element may not be attached
// yet) and get one retry upstream.
func (s *chromeSession) run(ctx context.Context, op, target string, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	// External cancellation cuts the step short.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(opCtx, actions...); err != nil {
		return &domain.AutomationError{
			Op:        op,
			Target:    target,
			Transient: errors.Is(err, context.DeadlineExceeded),
			Cause:     err,
		}
	}
	return nil
}

// query builds the chromedp query options for an authored target.
func query(target string) (string, chromedp.QueryOption) {
	q, isText := ResolveTarget(target)
	if isText {
		return TextXPath(q), chromedp.BySearch
	}
	if strings.HasPrefix(q, "//") {
		return q, chromedp.BySearch
	}
	return q, chromedp.ByQuery
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, "navigate", url, s.opts.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *chromeSession) Click(ctx context.Context, target string) error {
	q, by := query(target)
	return s.run(ctx, "click", target, s.opts.InteractionTimeout,
		chromedp.Click(q, by, chromedp.NodeVisible),
	)
}

func (s *chromeSession) Fill(ctx context.Context, target, value string) error {
	q, by := query(target)
	return s.run(ctx, "fill", target, s.opts.InteractionTimeout,
		chromedp.WaitVisible(q, by),
		chromedp.Clear(q, by),
		chromedp.SendKeys(q, value, by),
	)
}

func (s *chromeSession) SelectOption(ctx context.Context, target, value string) error {
	q, by := query(target)
	actions := []chromedp.Action{chromedp.SetValue(q, value, by)}
	if !strings.HasPrefix(q, "//") {
		actions = append(actions, chromedp.Evaluate(changeEventJS(q), nil))
	}
	return s.run(ctx, "select", target, s.opts.InteractionTimeout, actions...)
}

// changeEventJS dispatches a change event so frameworks notice the new value.
func changeEventJS(selector string) string {
	return fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); if (el) el.dispatchEvent(new Event("change", {bubbles: true})); })()`,
		selector,
	)
}

func (s *chromeSession) Hover(ctx context.Context, target string) error {
	q, by := query(target)
	// chromedp has no dedicated hover action; scrolling the node into view
	// triggers the same lazy-render paths the authored hover cares about.
	return s.run(ctx, "hover", target, s.opts.InteractionTimeout,
		chromedp.WaitVisible(q, by),
		chromedp.ScrollIntoView(q, by),
	)
}

func (s *chromeSession) Scroll(ctx context.Context, pixels int) error {
	return s.run(ctx, "scroll", "", s.opts.InteractionTimeout,
		chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", pixels), nil),
		chromedp.Sleep(500*time.Millisecond),
	)
}

func (s *chromeSession) WaitVisible(ctx context.Context, target string) error {
	q, by := query(target)
	return s.run(ctx, "wait_visible", target, s.opts.InteractionTimeout,
		chromedp.WaitVisible(q, by),
	)
}

func (s *chromeSession) Text(ctx context.Context, target string) (string, error) {
	q, by := query(target)
	var out string
	err := s.run(ctx, "text", target, s.opts.InteractionTimeout,
		chromedp.Text(q, &out, by),
	)
	return out, err
}

func (s *chromeSession) URL(ctx context.Context) (string, error) {
	var out string
	err := s.run(ctx, "url", "", s.opts.InteractionTimeout, chromedp.Location(&out))
	return out, err
}

func (s *chromeSession) Title(ctx context.Context) (string, error) {
	var out string
	err := s.run(ctx, "title", "", s.opts.InteractionTimeout, chromedp.Title(&out))
	return out, err
}

func (s *chromeSession) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, "screenshot", "", s.opts.InteractionTimeout,
		chromedp.FullScreenshot(&buf, 90),
	)
	return buf, err
}
