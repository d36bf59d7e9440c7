package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
)

// ChromeRenderer drives a headless Chrome through the DevTools protocol.
type ChromeRenderer struct {
	opts options
}

// NewChromeRenderer creates a renderer that launches Chrome per session.
func NewChromeRenderer(opts ...Option) *ChromeRenderer {
	return &ChromeRenderer{opts: buildOptions(opts)}
}

// Start launches the browser. The returned Browser owns the process.
func (r *ChromeRenderer) Start(ctx context.Context) (Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(desktopUA),
	)

	// The browser outlives the start call, so it hangs off a detached context.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	return &chromeBrowser{
		opts: r.opts,
		ctx:  browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}, nil
}

type chromeBrowser struct {
	opts   options
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Render opens url in a fresh tab, waits for the body plus the settle
// delay, and reads the document. When the load times out it returns the
// partial content the tab holds.
func (b *chromeBrowser) Render(ctx context.Context, url string) (Page, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return Page{}, ErrClosed
	}

	tabCtx, closeTab := chromedp.NewContext(b.ctx)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	page := Page{URL: url}

	loadCtx, cancelLoad := context.WithTimeout(tabCtx, b.opts.timeout)
	err := chromedp.Run(loadCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.opts.settle),
	)
	cancelLoad()
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			return Page{}, fmt.Errorf("navigate %s: %w", url, err)
		}
		page.Partial = true
	}

	readCtx, cancelRead := context.WithTimeout(tabCtx, b.opts.timeout)
	defer cancelRead()
	err = chromedp.Run(readCtx,
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &page.Text),
	)
	if err != nil {
		return Page{}, fmt.Errorf("read %s: %w", url, err)
	}
	return page, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (b *chromeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.cancel()
	return nil
}
