package hxevent

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// JavaScriptReference declares a script the page head must load.
//
// Name identifies the script for de-duplication. URL is used as-is when set;
// otherwise the script is served from the resource path under its Name.
// Deps are emitted before the script itself.
type JavaScriptReference struct {
	Name string
	URL  string
	Deps []JavaScriptReference
}

// HeaderResponse collects head contributions for one page render.
type HeaderResponse struct {
	resourcePath string
	seen         map[string]bool
	scripts      []string
	domReady     []func() string
}

// NewHeaderResponse creates a response resolving resource names against
// resourcePath.
func NewHeaderResponse(resourcePath string) *HeaderResponse {
	if resourcePath != "" && !strings.HasSuffix(resourcePath, "/") {
		resourcePath += "/"
	}
	return &HeaderResponse{
		resourcePath: resourcePath,
		seen:         make(map[string]bool),
	}
}

// Render declares a script reference. Dependencies are declared first;
// references already declared are skipped.
func (r *HeaderResponse) Render(ref JavaScriptReference) {
	if r.seen[ref.Name] {
		return
	}
	r.seen[ref.Name] = true
	for _, dep := range ref.Deps {
		r.Render(dep)
	}

	url := ref.URL
	if url == "" {
		url = r.resourcePath + ref.Name
	}
	r.scripts = append(r.scripts, url)
}

// WasRendered reports whether a reference with this name was declared.
func (r *HeaderResponse) WasRendered(name string) bool {
	return r.seen[name]
}

// Scripts returns the declared script URLs in load order.
func (r *HeaderResponse) Scripts() []string {
	return r.scripts
}

// OnDomReady queues a script to run once the document is loaded.
func (r *HeaderResponse) OnDomReady(script string) {
	r.domReady = append(r.domReady, func() string { return script })
}

// OnDomReadyFunc queues a script produced when the head is written, after
// every behavior has contributed.
func (r *HeaderResponse) OnDomReadyFunc(fn func() string) {
	r.domReady = append(r.domReady, fn)
}

// DomReadyScripts evaluates the queued dom-ready scripts.
func (r *HeaderResponse) DomReadyScripts() []string {
	out := make([]string, 0, len(r.domReady))
	for _, fn := range r.domReady {
		if s := fn(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Component renders the script tags followed by one dom-ready block.
func (r *HeaderResponse) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, url := range r.scripts {
			if _, err := fmt.Fprintf(w, `<script src="%s"></script>`, html.EscapeString(url)); err != nil {
				return err
			}
		}

		scripts := r.DomReadyScripts()
		if len(scripts) == 0 {
			return nil
		}
		var sb strings.Builder
		sb.WriteString(`<script>Wicket.Event.add(window, "domready", function() {`)
		for _, s := range scripts {
			sb.WriteString(s)
			sb.WriteString(";")
		}
		sb.WriteString(`});</script>`)
		_, err := io.WriteString(w, sb.String())
		return err
	})
}
