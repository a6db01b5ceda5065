package hxevent

import (
	"bytes"
	"context"
	"net/http"
	"strings"
)

// AjaxRequestTarget collects the response of one Ajax callback: components
// to re-render, scripts to evaluate, flash messages and a client event.
//
//	func(ctx context.Context, target *hxevent.AjaxRequestTarget) error {
//	    row.count++
//	    target.Add(rowComponent)
//	    target.Flash(hxevent.FlashSuccess, "Saved")
//	    return nil
//	}
type AjaxRequestTarget struct {
	page       *Page
	request    *http.Request
	components []*Component
	scripts    []string
	flashes    []Flash

	trigger     string
	triggerData map[string]any
	redirect    string
	headers     map[string]string
	status      int
}

// NewAjaxRequestTarget creates a target for a callback on page p.
func NewAjaxRequestTarget(p *Page, r *http.Request) *AjaxRequestTarget {
	return &AjaxRequestTarget{page: p, request: r}
}

// Page returns the page the callback belongs to.
func (t *AjaxRequestTarget) Page() *Page {
	return t.page
}

// Request returns the callback request.
func (t *AjaxRequestTarget) Request() *http.Request {
	return t.request
}

// Add marks components for re-rendering. Each returned element replaces the
// element with the same id on the client.
func (t *AjaxRequestTarget) Add(components ...*Component) {
	for _, c := range components {
		if !t.has(c) {
			t.components = append(t.components, c)
		}
	}
}

// Components returns the components marked for re-rendering.
func (t *AjaxRequestTarget) Components() []*Component {
	return t.components
}

// AppendJavaScript queues a script evaluated after the markup is swapped in.
func (t *AjaxRequestTarget) AppendJavaScript(script string) {
	t.scripts = append(t.scripts, script)
}

// Flash adds a toast notification.
func (t *AjaxRequestTarget) Flash(level, message string) {
	t.flashes = append(t.flashes, Flash{Level: level, Message: message})
}

// Trigger fires a client event after the response is applied. Data, when
// given, becomes the event detail.
func (t *AjaxRequestTarget) Trigger(event string, data ...map[string]any) {
	t.trigger = event
	if len(data) > 0 {
		t.triggerData = data[0]
	}
}

// Redirect makes the client navigate to url instead of applying markup.
func (t *AjaxRequestTarget) Redirect(url string) {
	t.redirect = url
}

// Header sets a response header.
func (t *AjaxRequestTarget) Header(key, value string) {
	if t.headers == nil {
		t.headers = make(map[string]string)
	}
	t.headers[key] = value
}

// Status sets the response status code. Zero means 200.
func (t *AjaxRequestTarget) Status(code int) {
	t.status = code
}

// Write renders the response. Components added to the target run their
// head contributions again so their client bindings survive the swap.
func (t *AjaxRequestTarget) Write(ctx context.Context, w http.ResponseWriter) error {
	for k, v := range t.headers {
		w.Header().Set(k, v)
	}
	if t.redirect != "" {
		w.Header().Set("HX-Redirect", t.redirect)
		w.WriteHeader(t.statusOr(http.StatusOK))
		return nil
	}
	if trigger := BuildTriggerHeader(t.trigger, t.triggerData); trigger != "" {
		w.Header().Set("HX-Trigger", trigger)
	}

	var buf bytes.Buffer
	head := NewHeaderResponse("")
	for _, c := range t.components {
		if err := c.Render(ctx, &buf); err != nil {
			return err
		}
		c.Visit(func(n *Component) {
			for _, b := range n.behaviors {
				b.RenderHead(n, head)
			}
		})
	}
	if err := FlashFragment(t.flashes).Render(ctx, &buf); err != nil {
		return err
	}
	for _, s := range append(head.DomReadyScripts(), t.scripts...) {
		buf.WriteString(`<script data-eval>`)
		buf.WriteString(strings.ReplaceAll(s, "</", `<\/`))
		buf.WriteString(`</script>`)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(t.statusOr(http.StatusOK))
	_, err := w.Write(buf.Bytes())
	return err
}

func (t *AjaxRequestTarget) has(c *Component) bool {
	for _, existing := range t.components {
		if existing == c {
			return true
		}
	}
	return false
}

func (t *AjaxRequestTarget) statusOr(def int) int {
	if t.status != 0 {
		return t.status
	}
	return def
}
