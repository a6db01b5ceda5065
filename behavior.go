package hxevent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Behavior attaches client-side and server-side logic to a component.
//
// The page invokes the hooks at fixed points of every request:
//
//	Configure  once per render or callback, before any output is produced
//	RenderHead while the document head is assembled
//	Detach     at the end of the request, even if it failed
//
// There are no inherited defaults. A behavior built on top of another one
// holds it as a field and calls its hooks explicitly.
type Behavior interface {
	// Bind is called once when the behavior is added to a component.
	Bind(c *Component) error
	Configure(c *Component)
	RenderHead(c *Component, r *HeaderResponse)
	Detach(c *Component)
}

// EventHandler is implemented by behaviors that respond to Ajax callbacks.
type EventHandler interface {
	OnEvent(ctx context.Context, c *Component, target *AjaxRequestTarget) error
}

// Handler is the application callback of an AjaxEventBehavior.
type Handler func(ctx context.Context, target *AjaxRequestTarget) error

var (
	eventNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9:._-]*$`)
	markupIDPattern  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// NormalizeEvent validates a DOM event name. A leading "on" is stripped so
// "onclick" and "click" are equivalent.
func NormalizeEvent(event string) (string, error) {
	event = strings.TrimSpace(event)
	if len(event) > 2 && strings.HasPrefix(strings.ToLower(event), "on") {
		event = event[2:]
	}
	if !eventNamePattern.MatchString(event) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEvent, event)
	}
	return event, nil
}

// ValidMarkupID reports whether id can be used as a client-side element id
// and embedded verbatim in generated scripts.
func ValidMarkupID(id string) bool {
	return markupIDPattern.MatchString(id)
}
