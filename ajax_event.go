package hxevent

import (
	"context"
	"fmt"
)

// AjaxEventBehavior sends an Ajax callback to the server when a DOM event
// fires on its component.
//
// On its own it binds one listener on the component's element. If an
// ancestor carries an EventDelegatingBehavior for the same event, the
// behavior contributes its attributes to that ancestor instead and no
// per-element listener is bound.
type AjaxEventBehavior struct {
	event   string
	handler Handler

	component *Component
	index     int

	preventDefault  bool
	stopPropagation bool
	target          string
	swap            SwapMode

	// UpdateAttributes, when set, adjusts the attributes before they are
	// serialized.
	UpdateAttributes func(c *Component, attrs *AjaxRequestAttributes)
}

// NewAjaxEventBehavior creates a behavior for event. The handler runs when
// the callback reaches the server.
func NewAjaxEventBehavior(event string, handler Handler) (*AjaxEventBehavior, error) {
	name, err := NormalizeEvent(event)
	if err != nil {
		return nil, err
	}
	return &AjaxEventBehavior{event: name, handler: handler}, nil
}

// Event returns the normalized event name.
func (b *AjaxEventBehavior) Event() string {
	return b.event
}

// PreventDefault makes the client call preventDefault() on the event.
func (b *AjaxEventBehavior) PreventDefault() *AjaxEventBehavior {
	b.preventDefault = true
	return b
}

// StopPropagation stops the event from reaching outer listeners, including
// further matches of a delegated listener.
func (b *AjaxEventBehavior) StopPropagation() *AjaxEventBehavior {
	b.stopPropagation = true
	return b
}

// Target sets the CSS selector of the element receiving the response.
// By default each returned element replaces the element with its id.
func (b *AjaxEventBehavior) Target(selector string) *AjaxEventBehavior {
	b.target = selector
	return b
}

// Swap sets how the response replaces the target.
func (b *AjaxEventBehavior) Swap(mode SwapMode) *AjaxEventBehavior {
	b.swap = mode
	return b
}

// Bind records the component and the behavior's position on it, which is
// what callback URLs refer to.
func (b *AjaxEventBehavior) Bind(c *Component) error {
	if b.component != nil {
		return fmt.Errorf("%w: %s behavior on %q", ErrAlreadyBound, b.event, b.component.Path())
	}
	b.component = c
	b.index = len(c.behaviors)
	return nil
}

// Configure has nothing to prepare.
func (b *AjaxEventBehavior) Configure(c *Component) {}

// RenderHead declares the event runtime and either contributes to a
// delegating ancestor or queues this behavior's own binding.
func (b *AjaxEventBehavior) RenderHead(c *Component, r *HeaderResponse) {
	b.renderRuntime(r)

	if d := b.delegate(c); d != nil {
		d.Contribute(c.MarkupID(), b.Attributes(c).JSON())
		return
	}
	r.OnDomReady(b.CallbackScript(c))
}

// Detach has no request state to release.
func (b *AjaxEventBehavior) Detach(c *Component) {}

// OnEvent runs the handler.
func (b *AjaxEventBehavior) OnEvent(ctx context.Context, c *Component, target *AjaxRequestTarget) error {
	if b.handler == nil {
		return nil
	}
	return b.handler(ctx, target)
}

// Attributes returns the Ajax attributes for c.
func (b *AjaxEventBehavior) Attributes(c *Component) AjaxRequestAttributes {
	attrs := AjaxRequestAttributes{
		Method:          "POST",
		Event:           b.event,
		MarkupID:        c.MarkupID(),
		PreventDefault:  b.preventDefault,
		StopPropagation: b.stopPropagation,
		Target:          b.target,
		Swap:            b.swap,
	}
	if p := c.Page(); p != nil && p.callbackURL != nil {
		attrs.URL = p.callbackURL(c, b.index)
	}
	if b.UpdateAttributes != nil {
		b.UpdateAttributes(c, &attrs)
	}
	return attrs
}

// CallbackScript returns the script binding this behavior's own listener.
func (b *AjaxEventBehavior) CallbackScript(c *Component) string {
	return "Wicket.Ajax.ajax(" + b.Attributes(c).JSON() + ")"
}

func (b *AjaxEventBehavior) renderRuntime(r *HeaderResponse) {
	r.Render(EventRuntime)
}

// delegate finds the closest ancestor delegating this event. Delegation is
// only used once the page has the event enabled.
func (b *AjaxEventBehavior) delegate(c *Component) *EventDelegatingBehavior {
	p := c.Page()
	if p == nil || !p.EnabledEvents().Has(b.event) {
		return nil
	}
	for anc := c.parent; anc != nil; anc = anc.parent {
		for _, bh := range anc.behaviors {
			if d, ok := bh.(*EventDelegatingBehavior); ok && d.Event() == b.event {
				return d
			}
		}
	}
	return nil
}
