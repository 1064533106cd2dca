// Package driver defines the automation capability the orchestrator drives.
// The orchestrator only ever sees these interfaces; the concrete chromedp
// implementation lives beside them, and tests substitute a scripted fake.
package driver

import "context"

// Session is one isolated browsing context. Cases never share a session, so
// state cannot leak between them. Every operation blocks until it resolves
// (success, timeout, or error) and honors the passed context.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, target string) error
	Fill(ctx context.Context, target, value string) error
	SelectOption(ctx context.Context, target, value string) error
	Hover(ctx context.Context, target string) error
	Scroll(ctx context.Context, pixels int) error
	WaitVisible(ctx context.Context, target string) error
	Text(ctx context.Context, target string) (string, error)
	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Driver creates isolated sessions against one browser/engine instance.
type Driver interface {
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// VideoRecorder is an optional Session capability. The orchestrator probes
// for it after a case finishes; sessions without recording simply don't
// implement it.
type VideoRecorder interface {
	// VideoPath returns the finalized recording path, or "" when no video
	// was produced.
	VideoPath() string
}
