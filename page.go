package hxevent

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// CallbackURLFunc builds the Ajax callback URL for the behavior at index
// behavior of component c. Installed by the Registry when a page is stored.
type CallbackURLFunc func(c *Component, behavior int) string

// Page is the root of a component tree and the owner of page-scoped state.
//
// A page lives across requests until it is discarded by its store. The
// registry processes one request at a time per page, so the tree, the
// metadata and the behaviors need no locking of their own.
type Page struct {
	id    string
	title string
	root  *Component
	meta  map[any]any

	markupSeq    int
	discarded    bool
	callbackURL  CallbackURLFunc
	resourcePath string

	mu sync.Mutex
}

// NewPage creates a page around root. Panics if root is already attached.
func NewPage(title string, root *Component) *Page {
	if root.parent != nil || root.page != nil {
		panic(fmt.Sprintf("hxevent: component %q cannot be a page root", root.id))
	}
	p := &Page{
		id:           uuid.NewString(),
		title:        title,
		root:         root,
		resourcePath: DefaultResourcePath,
	}
	root.page = p
	return p
}

// ID returns the page id.
func (p *Page) ID() string {
	return p.id
}

// Title returns the document title.
func (p *Page) Title() string {
	return p.title
}

// Root returns the root component.
func (p *Page) Root() *Component {
	return p.root
}

// EnabledEvents returns the events delegated on this page, or nil if no
// EventDelegatingBehavior has been configured yet.
func (p *Page) EnabledEvents() *EventSet {
	set, _ := EnabledEventsKey.Get(p)
	return set
}

// Find resolves a colon separated component path. The empty path is the
// root.
func (p *Page) Find(path string) (*Component, error) {
	c := p.root
	if path == "" {
		return c, nil
	}
	for _, id := range strings.Split(path, ":") {
		c = c.Child(id)
		if c == nil {
			return nil, fmt.Errorf("%w: component %q", ErrNotFound, path)
		}
	}
	return c, nil
}

// Configure runs the Configure hook of every behavior in tree order.
func (p *Page) Configure() {
	p.root.Visit(func(c *Component) {
		for _, b := range c.behaviors {
			b.Configure(c)
		}
	})
}

// RenderHead lets every behavior contribute to r, in tree order.
func (p *Page) RenderHead(r *HeaderResponse) {
	p.root.Visit(func(c *Component) {
		for _, b := range c.behaviors {
			b.RenderHead(c, r)
		}
	})
}

// Detach runs the Detach hook of every behavior.
func (p *Page) Detach() {
	p.root.Visit(func(c *Component) {
		for _, b := range c.behaviors {
			b.Detach(c)
		}
	})
}

// Render runs a full page request: configure, body, head, detach. Detach
// runs even if rendering fails.
func (p *Page) Render(ctx context.Context, w io.Writer) error {
	p.Configure()
	defer p.Detach()

	var body bytes.Buffer
	if err := p.root.Render(ctx, &body); err != nil {
		return fmt.Errorf("render body: %w", err)
	}

	head := NewHeaderResponse(p.resourcePath)
	p.RenderHead(head)

	var doc bytes.Buffer
	doc.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	doc.WriteString(html.EscapeString(p.title))
	doc.WriteString("</title>")
	if err := head.Component().Render(ctx, &doc); err != nil {
		return fmt.Errorf("render head: %w", err)
	}
	doc.WriteString("</head><body>")
	doc.Write(body.Bytes())
	doc.WriteString("</body></html>")

	_, err := w.Write(doc.Bytes())
	return err
}

// Discard drops all page metadata and marks the page expired. Called by
// the page store on eviction.
func (p *Page) Discard() {
	p.meta = nil
	p.discarded = true
}

// Discarded reports whether the page was discarded by its store.
func (p *Page) Discarded() bool {
	return p.discarded
}

// SetResourcePath sets the URL prefix the head scripts are loaded from.
func (p *Page) SetResourcePath(path string) {
	p.resourcePath = path
}

func (p *Page) nextMarkupID(componentID string) string {
	p.markupSeq++
	return sanitizeMarkupID(componentID) + "-" + strconv.FormatInt(int64(p.markupSeq), 16)
}
