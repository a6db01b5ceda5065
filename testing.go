package hxevent

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// TestResult holds the outcome of a rendered page or callback for tests.
//
// Provides convenience methods for asserting on HTML content, headers,
// status codes, events, flashes, and redirects.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents []string
	Flashes         []Flash
	RedirectURL     string
}

// TestRenderPage runs a full render of p without a registry.
//
// Callback URLs are empty unless the page was added to a Registry first.
//
//	result, err := hxevent.TestRenderPage(page)
//	if !result.HTMLContains("Wicket.Event.delegate(") {
//	    t.Fatal("missing delegated listener")
//	}
func TestRenderPage(p *Page) (*TestResult, error) {
	return TestRenderPageWithContext(context.Background(), p)
}

// TestRenderPageWithContext renders p with a custom context.
func TestRenderPageWithContext(ctx context.Context, p *Page) (*TestResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var buf bytes.Buffer
	if err := p.Render(ctx, &buf); err != nil {
		return nil, err
	}

	return &TestResult{
		HTML:       buf.String(),
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
	}, nil
}

// TestCallback fires the callback of behavior b on component c through the
// registry handler, as the client runtime would. The page must have been
// added to reg.
//
//	result, err := hxevent.TestCallback(reg, row, click)
//	if !result.HTMLContains("Clicked 1") { ... }
func TestCallback(reg *Registry, c *Component, b Behavior) (*TestResult, error) {
	p := c.Page()
	if p == nil {
		return nil, fmt.Errorf("component %q is not attached to a page", c.ID())
	}
	index := -1
	for i, bound := range c.behaviors {
		if bound == b {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("behavior is not bound to %q", c.Path())
	}

	return NewTestRequest(http.MethodPost, reg.callbackURLFunc(p)(c, index)).
		WithHeader("HX-Trigger", c.MarkupID()).
		Execute(reg.Handler())
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HTMLContainsAny checks if the HTML contains any of the given substrings.
func (r *TestResult) HTMLContainsAny(substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(r.HTML, s) {
			return true
		}
	}
	return false
}

// HasEvent checks if an event was triggered.
func (r *TestResult) HasEvent(event string) bool {
	for _, e := range r.TriggeredEvents {
		if strings.Contains(e, event) {
			return true
		}
	}
	return false
}

// HasFlash checks if a flash message was set with the given level and message.
func (r *TestResult) HasFlash(level, message string) bool {
	for _, f := range r.Flashes {
		if f.Level == level && f.Message == message {
			return true
		}
	}
	return false
}

// HasFlashLevel checks if any flash message was set with the given level.
func (r *TestResult) HasFlashLevel(level string) bool {
	for _, f := range r.Flashes {
		if f.Level == level {
			return true
		}
	}
	return false
}

// WasRedirected checks if the response was a redirect.
func (r *TestResult) WasRedirected() bool {
	return r.RedirectURL != ""
}

// RedirectedTo checks if the response was redirected to a specific URL.
func (r *TestResult) RedirectedTo(url string) bool {
	return r.RedirectURL == url
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// HasHeader checks if a header is set with the given value.
func (r *TestResult) HasHeader(key, value string) bool {
	return r.Headers.Get(key) == value
}

// GetHeader returns the value of a header.
func (r *TestResult) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// parseTriggerHeader parses the HX-Trigger header value into event names.
// The header can be a simple event name or JSON.
func parseTriggerHeader(trigger string) []string {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil
	}

	// If it starts with '{', it's JSON - parse event names from top-level keys
	if strings.HasPrefix(trigger, "{") {
		var events []string
		// Track depth to only extract top-level keys
		depth := 0
		inString := false
		stringStart := -1

		for i := 0; i < len(trigger); i++ {
			c := trigger[i]

			// Handle escape sequences in strings
			if inString && c == '\\' && i+1 < len(trigger) {
				i++ // Skip the escaped character
				continue
			}

			if c == '"' {
				if !inString {
					inString = true
					stringStart = i + 1
				} else {
					// End of string
					stringEnd := i
					inString = false

					// Only consider keys at depth 1 (top-level object)
					if depth == 1 {
						// Skip whitespace after the closing quote
						j := i + 1
						for j < len(trigger) && (trigger[j] == ' ' || trigger[j] == '\t') {
							j++
						}
						// Check if this is a key (followed by ':')
						if j < len(trigger) && trigger[j] == ':' {
							events = append(events, trigger[stringStart:stringEnd])
						}
					}
					stringStart = -1
				}
			} else if !inString {
				if c == '{' {
					depth++
				} else if c == '}' {
					depth--
				}
			}
		}
		return events
	}

	// Simple comma-separated list
	parts := strings.Split(trigger, ",")
	events := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			events = append(events, p)
		}
	}
	return events
}

// parseFlashesFromHTML extracts flash messages from OOB swap HTML.
// Looks for patterns like: <div class="toast toast-success" ...>message</div>
func parseFlashesFromHTML(html string) []Flash {
	var flashes []Flash

	// Find all toast divs
	const prefix = `<div class="toast toast-`
	idx := 0
	for {
		start := strings.Index(html[idx:], prefix)
		if start == -1 {
			break
		}
		start += idx + len(prefix)

		// Extract level (until the next quote)
		levelEnd := strings.Index(html[start:], `"`)
		if levelEnd == -1 {
			break
		}
		level := html[start : start+levelEnd]

		// Find the closing > of the opening tag
		tagEnd := strings.Index(html[start:], ">")
		if tagEnd == -1 {
			break
		}
		contentStart := start + tagEnd + 1

		// Find the closing </div>
		contentEnd := strings.Index(html[contentStart:], "</div>")
		if contentEnd == -1 {
			break
		}
		message := html[contentStart : contentStart+contentEnd]

		flashes = append(flashes, Flash{
			Level:   level,
			Message: message,
		})

		idx = contentStart + contentEnd
	}

	return flashes
}

// TestRequestBuilder provides a fluent interface for building test requests.
//
// Use this when you need fine-grained control over request construction:
//
//	result, err := hxevent.NewTestRequest("POST", callbackURL).
//	    WithFormData("name", "value").
//	    WithHeader("X-Custom", "header").
//	    WithContext(ctx).
//	    Execute(reg.Handler())
type TestRequestBuilder struct {
	method   string
	url      string
	formData map[string]string
	headers  map[string]string
	ctx      context.Context
}

// NewTestRequest creates a new test request builder.
func NewTestRequest(method, url string) *TestRequestBuilder {
	return &TestRequestBuilder{
		method:   method,
		url:      url,
		formData: make(map[string]string),
		headers:  make(map[string]string),
		ctx:      context.Background(),
	}
}

// WithFormData adds form data to the request.
func (b *TestRequestBuilder) WithFormData(key, value string) *TestRequestBuilder {
	b.formData[key] = value
	return b
}

// WithHeader adds a header to the request.
func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	b.headers[key] = value
	return b
}

// WithContext sets the context for the request.
func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// Execute runs the request against h. The Ajax header is set by default;
// override it with WithHeader("HX-Request", "").
func (b *TestRequestBuilder) Execute(h http.Handler) (*TestResult, error) {
	form := url.Values{}
	for k, v := range b.formData {
		form.Set(k, v)
	}

	req := httptest.NewRequest(b.method, b.url, strings.NewReader(form.Encode()))
	req = req.WithContext(b.ctx)
	req.Header.Set("HX-Request", "true")
	if len(b.formData) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range b.headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	result := &TestResult{
		HTML:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
	}
	if trigger := rec.Header().Get("HX-Trigger"); trigger != "" {
		result.TriggeredEvents = parseTriggerHeader(trigger)
	}
	if redirect := rec.Header().Get("HX-Redirect"); redirect != "" {
		result.RedirectURL = redirect
	}
	result.Flashes = parseFlashesFromHTML(result.HTML)

	return result, nil
}
