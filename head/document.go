package head

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/eringen/clinicseo/seo"
)

// ErrStaleNavigation is returned by Navigate when a newer navigation started
// before the resolution finished. The stale result is discarded.
var ErrStaleNavigation = errors.New("head: navigation superseded")

// ResolveFunc produces the metadata for a page id.
type ResolveFunc func(ctx context.Context, pageID string) (seo.Metadata, error)

// Document is an HTML document whose head follows the current page id.
// Only the latest navigation may write to it.
type Document struct {
	mu      sync.Mutex
	doc     *goquery.Document
	opts    Options
	gen     uint64
	current string
	cancel  context.CancelFunc
}

// NewDocument wraps doc.
func NewDocument(doc *goquery.Document, opts Options) *Document {
	return &Document{doc: doc, opts: opts}
}

// ParseDocument parses r into a Document.
func ParseDocument(r io.Reader, opts Options) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(doc, opts), nil
}

// Navigate switches the document to pageID. It cancels the context of any
// navigation still in flight, resolves pageID and applies the result only if
// no newer navigation has started meanwhile.
func (d *Document) Navigate(ctx context.Context, pageID string, resolve ResolveFunc) error {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.gen++
	gen := d.gen
	d.current = pageID
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()
	defer cancel()

	m, err := resolve(ctx, pageID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return ErrStaleNavigation
	}
	d.cancel = nil
	if err != nil {
		return err
	}
	if m.PageID != "" && m.PageID != pageID {
		return ErrStaleNavigation
	}
	Apply(d.doc, m, d.opts)
	return nil
}

// PageID returns the page id of the latest navigation.
func (d *Document) PageID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Render writes the document to w.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.doc.Get(0))
}

// Title returns the text of the document's title.
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find("title").First().Text()
}
