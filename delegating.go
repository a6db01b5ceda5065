package hxevent

import (
	"context"
	"fmt"

	"github.com/pthm/hxevent/lib/jsonlit"
)

// EventDelegatingBehavior collects the Ajax attributes of every
// AjaxEventBehavior for the same event below its component, so the browser
// binds a single listener on the component's element instead of one per
// descendant.
//
//	table := hxevent.NewComponent("table", nil)
//	d, _ := hxevent.NewEventDelegatingBehavior("click")
//	table.AddBehavior(d)
//	// rows added below table with click AjaxEventBehaviors are now served
//	// by one listener on the table element
//
// The behavior never handles an event itself; OnEvent always fails.
type EventDelegatingBehavior struct {
	base *AjaxEventBehavior

	// attrs is request scoped: filled during the head pass, released on
	// Detach. nil until the first contribution.
	attrs       jsonlit.Object
	initialized bool
}

// NewEventDelegatingBehavior creates a delegating behavior for event.
func NewEventDelegatingBehavior(event string) (*EventDelegatingBehavior, error) {
	base, err := NewAjaxEventBehavior(event, nil)
	if err != nil {
		return nil, err
	}
	return &EventDelegatingBehavior{base: base}, nil
}

// Event returns the delegated event name.
func (b *EventDelegatingBehavior) Event() string {
	return b.base.Event()
}

// Bind binds the behavior to c.
func (b *EventDelegatingBehavior) Bind(c *Component) error {
	return b.base.Bind(c)
}

// Configure enables delegation of the event on the page. Only the first
// call has an effect.
func (b *EventDelegatingBehavior) Configure(c *Component) {
	b.base.Configure(c)

	if b.initialized {
		return
	}
	p := c.Page()
	if p == nil {
		return
	}
	enabled := EnabledEventsKey.SetIfAbsent(p, NewEventSet)
	enabled.Add(b.Event())
	b.initialized = true
}

// Contribute records the serialized Ajax attributes of the descendant with
// markup id componentID, replacing an earlier contribution for the same id.
// The payload is not validated here; CallbackScript keeps the output well
// formed whatever it contains.
func (b *EventDelegatingBehavior) Contribute(componentID, attributes string) {
	if b.attrs == nil {
		b.attrs = make(jsonlit.Object)
	}
	b.attrs[componentID] = jsonlit.Raw(attributes)
}

// Contributions returns the number of descendants contributed so far in the
// current request.
func (b *EventDelegatingBehavior) Contributions() int {
	return len(b.attrs)
}

// CallbackScript returns the client call installing the delegated listener.
func (b *EventDelegatingBehavior) CallbackScript(c *Component) string {
	return fmt.Sprintf("Wicket.Event.delegate('%s', '%s', %s)",
		c.MarkupID(), b.Event(), b.attrs.String())
}

// RenderHead declares the delegation runtime after the event runtime and
// queues the delegate call. The call is built when the head is written, so
// it includes descendants that contribute later in the same head pass.
func (b *EventDelegatingBehavior) RenderHead(c *Component, r *HeaderResponse) {
	b.base.renderRuntime(r)
	r.Render(DelegationRuntime)
	r.OnDomReadyFunc(func() string {
		return b.CallbackScript(c)
	})
}

// Detach releases the contributions of the finished request.
func (b *EventDelegatingBehavior) Detach(c *Component) {
	b.base.Detach(c)
	b.attrs = nil
}

// OnEvent always fails: callbacks go to the descendants' behaviors.
func (b *EventDelegatingBehavior) OnEvent(ctx context.Context, c *Component, target *AjaxRequestTarget) error {
	path := ""
	if c != nil {
		path = c.Path()
	}
	return fmt.Errorf("%s delegation on %q: %w", b.Event(), path, ErrUnsupportedOperation)
}
