// Package render turns a quiz URL into its HTML and visible text.
//
// A Renderer starts a Browser once per session; the Browser renders any
// number of pages and must be closed on every exit path.
package render

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultSettle  = 2 * time.Second

	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrClosed is returned by Render after Close.
var ErrClosed = errors.New("browser closed")

// Page is a rendered document. Partial is set when the load timed out and
// the content is whatever had arrived by then.
type Page struct {
	URL     string
	HTML    string
	Text    string
	Partial bool
}

// Renderer acquires a browser for one session.
type Renderer interface {
	Start(ctx context.Context) (Browser, error)
}

// Browser renders pages until closed.
type Browser interface {
	Render(ctx context.Context, url string) (Page, error)
	Close() error
}

// Options shared by the renderers.
type options struct {
	timeout time.Duration
	settle  time.Duration
}

// Option configures a renderer.
type Option func(*options)

// WithTimeout bounds a single page load.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithSettle sets how long to wait after load for scripts to finish.
func WithSettle(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.settle = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{timeout: DefaultTimeout, settle: DefaultSettle}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
