package hxevent

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// RenderFunc produces a component's markup. It receives the component so it
// can use c.Attrs() and c.RenderChildren().
type RenderFunc func(c *Component) templ.Component

// Component is a node in a page's component tree.
//
// Components are identified by an id that is unique among their siblings.
// The colon separated ids from the root form the component's path, which is
// what callback URLs refer to:
//
//	table := hxevent.NewComponent("table", nil)
//	row := hxevent.NewComponent("row3", hxevent.Text("tr", "Row 3"))
//	table.Add(row)
//	row.Path() // "table:row3" once table is added to a page root
type Component struct {
	id        string
	markupID  string
	parent    *Component
	page      *Page // set on the root only
	children  []*Component
	behaviors []Behavior
	render    RenderFunc
}

// NewComponent creates a component. A nil render function renders a div
// wrapping the children. Panics on an empty id or one containing ':'.
func NewComponent(id string, render RenderFunc) *Component {
	if id == "" || strings.Contains(id, ":") {
		panic(fmt.Sprintf("hxevent: invalid component id %q", id))
	}
	return &Component{id: id, render: render}
}

// ID returns the component id.
func (c *Component) ID() string {
	return c.id
}

// Add appends children and returns c. Panics if a child already has a parent
// or its id collides with an existing sibling.
func (c *Component) Add(children ...*Component) *Component {
	for _, child := range children {
		if child.parent != nil || child.page != nil {
			panic(fmt.Sprintf("hxevent: component %q already has a parent", child.id))
		}
		if c.Child(child.id) != nil {
			panic(fmt.Sprintf("hxevent: duplicate component id %q in %q", child.id, c.Path()))
		}
		child.parent = c
		c.children = append(c.children, child)
	}
	return c
}

// AddBehavior binds b to the component.
func (c *Component) AddBehavior(b Behavior) error {
	if err := b.Bind(c); err != nil {
		return err
	}
	c.behaviors = append(c.behaviors, b)
	return nil
}

// Behaviors returns the bound behaviors in the order they were added.
func (c *Component) Behaviors() []Behavior {
	return c.behaviors
}

// Parent returns the parent component, nil for the root.
func (c *Component) Parent() *Component {
	return c.parent
}

// Children returns the direct children.
func (c *Component) Children() []*Component {
	return c.children
}

// Child returns the direct child with the given id, or nil.
func (c *Component) Child(id string) *Component {
	for _, child := range c.children {
		if child.id == id {
			return child
		}
	}
	return nil
}

// Page returns the page the component belongs to, or nil if it is not
// attached yet.
func (c *Component) Page() *Page {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	return root.page
}

// Path returns the page-relative path. The root has an empty path.
func (c *Component) Path() string {
	var ids []string
	for n := c; n.parent != nil; n = n.parent {
		ids = append(ids, n.id)
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return strings.Join(ids, ":")
}

// Visit walks the subtree rooted at c in pre-order.
func (c *Component) Visit(fn func(*Component)) {
	fn(c)
	for _, child := range c.children {
		child.Visit(fn)
	}
}

// MarkupID returns the client-side element id. It is generated on first use
// and unique within the page.
func (c *Component) MarkupID() string {
	if c.markupID != "" {
		return c.markupID
	}
	p := c.Page()
	if p == nil {
		// Not cached: the final id is assigned once the component is attached.
		return sanitizeMarkupID(c.id)
	}
	c.markupID = p.nextMarkupID(c.id)
	return c.markupID
}

// SetMarkupID assigns an explicit markup id.
func (c *Component) SetMarkupID(id string) error {
	if !ValidMarkupID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidMarkupID, id)
	}
	c.markupID = id
	return nil
}

// Attrs returns the attributes every rendered component carries.
func (c *Component) Attrs() templ.Attributes {
	return templ.Attributes{"id": c.MarkupID()}
}

// RenderChildren renders the children in order.
func (c *Component) RenderChildren() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, child := range c.children {
			if err := child.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Render writes the component's markup.
func (c *Component) Render(ctx context.Context, w io.Writer) error {
	render := c.render
	if render == nil {
		render = Text("div", "")
	}
	return render(c).Render(ctx, w)
}

// Text renders <tag id="...">text</tag> followed by the children inside the
// element. The text is HTML-escaped.
func Text(tag, text string) RenderFunc {
	return func(c *Component) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if _, err := fmt.Fprintf(w, `<%s id="%s">%s`, tag, c.MarkupID(), html.EscapeString(text)); err != nil {
				return err
			}
			if err := c.RenderChildren().Render(ctx, w); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, `</%s>`, tag)
			return err
		})
	}
}

// sanitizeMarkupID maps a component id onto the markup id alphabet.
func sanitizeMarkupID(id string) string {
	var sb strings.Builder
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9', r == '-', r == '_':
			if i == 0 {
				sb.WriteByte('c')
			}
			sb.WriteRune(r)
		default:
			if i == 0 {
				sb.WriteByte('c')
			}
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "c"
	}
	return sb.String()
}
