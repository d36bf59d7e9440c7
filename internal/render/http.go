package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTTPRenderer fetches pages without running scripts. It suits quiz pages
// that ship their question in the markup.
type HTTPRenderer struct {
	opts   options
	client *http.Client
}

// NewHTTPRenderer creates a renderer backed by a plain HTTP client.
func NewHTTPRenderer(opts ...Option) *HTTPRenderer {
	return &HTTPRenderer{opts: buildOptions(opts), client: &http.Client{}}
}

// Start returns a Browser sharing the renderer's client.
func (r *HTTPRenderer) Start(context.Context) (Browser, error) {
	return &httpBrowser{r: r}, nil
}

type httpBrowser struct {
	r      *HTTPRenderer
	closed bool
}

func (b *httpBrowser) Render(ctx context.Context, url string) (Page, error) {
	if b.closed {
		return Page{}, ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, b.r.opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("User-Agent", desktopUA)

	resp, err := b.r.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, fmt.Errorf("get %s: http %d", url, resp.StatusCode)
	}

	page := Page{URL: url}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() == nil || len(body) == 0 {
			return Page{}, fmt.Errorf("read %s: %w", url, err)
		}
		page.Partial = true
	}
	page.HTML = string(body)

	text, err := VisibleText(page.HTML)
	if err != nil {
		return Page{}, err
	}
	page.Text = text
	return page, nil
}

func (b *httpBrowser) Close() error {
	b.closed = true
	return nil
}

// VisibleText approximates innerText: text outside head, script, style,
// noscript and template, with block elements on their own lines.
func VisibleText(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Head, atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			case atom.Br:
				b.WriteByte('\n')
				return
			}
		}
		block := n.Type == html.ElementNode && isBlock(n.DataAtom)
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	walk(root)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer, atom.Main,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Li, atom.Table, atom.Tr, atom.Pre, atom.Blockquote, atom.Form:
		return true
	}
	return false
}
