package hxevent

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pthm/hxevent/lib/encoding"
)

// Registry stores pages and serves their Ajax callbacks and client
// runtimes.
//
//	reg := hxevent.NewRegistry(key, hxevent.WithLogger(logger))
//	http.Handle("/", reg.PageHandler(newDemoPage))
//	http.Handle(hxevent.DefaultPath, reg.Handler())
type Registry struct {
	mux          *http.ServeMux
	encoder      *encoding.Encoder
	store        PageStore
	path         string
	resourcePath string
	sensitive    bool
	logger       zerolog.Logger
	registerer   prometheus.Registerer
	metrics      *metrics

	// OnError is called when a page render or callback fails.
	// Customize this to handle errors appropriately for your application.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(reg *Registry) { reg.logger = l }
}

// WithRegisterer registers the registry's Prometheus collectors.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(reg *Registry) { reg.registerer = r }
}

// WithPath sets the URL prefix callbacks are served under.
func WithPath(path string) Option {
	return func(reg *Registry) { reg.path = withSlash(path) }
}

// WithResourcePath sets the URL prefix the client runtimes are served under.
func WithResourcePath(path string) Option {
	return func(reg *Registry) { reg.resourcePath = withSlash(path) }
}

// WithStore replaces the default in-memory page store.
func WithStore(s PageStore) Option {
	return func(reg *Registry) { reg.store = s }
}

// WithEncryptedCallbacks encrypts callback parameters instead of signing
// them.
func WithEncryptedCallbacks() Option {
	return func(reg *Registry) { reg.sensitive = true }
}

// callbackParams identify the behavior a callback URL belongs to.
type callbackParams struct {
	Page     string `msgpack:"pg"`
	Path     string `msgpack:"cp"`
	Behavior int    `msgpack:"bh"`
}

// NewRegistry creates a registry with the given key. A nil key generates a
// random one, suitable for development only. Panics if the encoder cannot
// be created.
func NewRegistry(key []byte, opts ...Option) *Registry {
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxevent: failed to generate random key: %v", err))
		}
	}
	enc, err := encoding.NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("hxevent: failed to create encoder: %v", err))
	}

	reg := &Registry{
		mux:          http.NewServeMux(),
		encoder:      enc,
		path:         DefaultPath,
		resourcePath: DefaultResourcePath,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(reg)
	}
	if reg.store == nil {
		reg.store = NewMemoryStore(256)
	}
	reg.metrics = newMetrics(reg.registerer, reg.store)

	reg.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		switch {
		case IsNotFound(err):
			http.Error(w, "Not found", http.StatusNotFound)
		case IsDecryptionError(err):
			http.Error(w, "Bad request", http.StatusBadRequest)
		default:
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
	}

	reg.mux.HandleFunc(reg.path+"cb", reg.handleCallback)
	reg.mux.Handle(reg.resourcePath, http.StripPrefix(reg.resourcePath, ResourceHandler()))

	return reg
}

// Store returns the page store.
func (reg *Registry) Store() PageStore {
	return reg.store
}

// Path returns the URL prefix callbacks are served under.
func (reg *Registry) Path() string {
	return reg.path
}

// ResourcePath returns the URL prefix the client runtimes are served under.
func (reg *Registry) ResourcePath() string {
	return reg.resourcePath
}

// AddPage wires p to the registry and stores it.
func (reg *Registry) AddPage(p *Page) {
	p.callbackURL = reg.callbackURLFunc(p)
	p.resourcePath = reg.resourcePath
	reg.store.Put(p)
}

// PageHandler renders a fresh page from factory on every request.
func (reg *Registry) PageHandler(factory func(r *http.Request) (*Page, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := factory(r)
		if err != nil {
			reg.fail(w, r, errors.Wrap(err, "build page"))
			return
		}
		reg.AddPage(p)

		var buf bytes.Buffer
		p.mu.Lock()
		err = p.Render(r.Context(), &buf)
		p.mu.Unlock()
		if err != nil {
			reg.fail(w, r, errors.Wrapf(err, "render page %s", p.id))
			return
		}

		reg.metrics.renders.Inc()
		reg.logger.Debug().Str("page", p.id).Int("bytes", buf.Len()).Msg("page rendered")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	})
}

// Handler returns the handler for callbacks and client runtimes. Mount it
// at the registry path.
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CSRF protection: mutating methods require the Ajax header, which
		// cross-origin forms cannot set.
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !IsAjax(r) {
			reg.metrics.callback("", outcomeRejected, time.Now())
			http.Error(w, "Forbidden: Ajax request required", http.StatusForbidden)
			return
		}
		reg.mux.ServeHTTP(w, r)
	})
}

func (reg *Registry) handleCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params callbackParams
	if err := reg.encoder.Decode(r.URL.Query().Get("p"), reg.sensitive, &params); err != nil {
		reg.metrics.callback("", outcomeRejected, start)
		reg.fail(w, r, errors.Wrap(wrapEncodingError(err), "decode callback"))
		return
	}

	p, ok := reg.store.Get(params.Page)
	if !ok {
		reg.metrics.callback("", outcomeRejected, start)
		reg.fail(w, r, errors.Wrapf(ErrPageExpired, "page %s", params.Page))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// The store may have evicted the page while this request waited.
	if p.discarded {
		reg.metrics.callback("", outcomeRejected, start)
		reg.fail(w, r, errors.Wrapf(ErrPageExpired, "page %s", params.Page))
		return
	}

	c, b, err := lookupBehavior(p, params)
	if err != nil {
		reg.metrics.callback("", outcomeRejected, start)
		reg.fail(w, r, err)
		return
	}
	event := eventOf(b)

	handler, ok := b.(EventHandler)
	if !ok {
		reg.metrics.callback(event, outcomeUnsupported, start)
		reg.fail(w, r, errors.Wrapf(ErrUnsupportedOperation, "behavior %d on %q", params.Behavior, params.Path))
		return
	}

	p.Configure()
	defer p.Detach()

	target := NewAjaxRequestTarget(p, r)
	if err := handler.OnEvent(r.Context(), c, target); err != nil {
		outcome := outcomeError
		if IsUnsupported(err) {
			outcome = outcomeUnsupported
		}
		reg.metrics.callback(event, outcome, start)
		reg.fail(w, r, errors.Wrapf(err, "%s callback on %q", event, params.Path))
		return
	}

	if err := target.Write(r.Context(), w); err != nil {
		reg.metrics.callback(event, outcomeError, start)
		reg.logger.Error().Err(err).Str("page", p.id).Str("component", params.Path).Msg("write callback response")
		return
	}

	reg.metrics.callback(event, outcomeOK, start)
	reg.logger.Debug().
		Str("page", p.id).
		Str("component", params.Path).
		Str("event", event).
		Int("rerendered", len(target.Components())).
		Msg("callback handled")
}

func (reg *Registry) fail(w http.ResponseWriter, r *http.Request, err error) {
	ev := reg.logger.Warn()
	if !IsNotFound(err) && !IsDecryptionError(err) {
		ev = reg.logger.Error()
	}
	ev.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	reg.OnError(w, r, err)
}

func (reg *Registry) callbackURLFunc(p *Page) CallbackURLFunc {
	return func(c *Component, behavior int) string {
		token, err := reg.encoder.Encode(callbackParams{
			Page:     p.id,
			Path:     c.Path(),
			Behavior: behavior,
		}, reg.sensitive)
		if err != nil {
			reg.logger.Error().Err(err).Str("page", p.id).Str("component", c.Path()).Msg("encode callback url")
			return ""
		}
		return reg.path + "cb?p=" + token
	}
}

func lookupBehavior(p *Page, params callbackParams) (*Component, Behavior, error) {
	c, err := p.Find(params.Path)
	if err != nil {
		return nil, nil, err
	}
	if params.Behavior < 0 || params.Behavior >= len(c.behaviors) {
		return nil, nil, fmt.Errorf("%w: behavior %d on %q", ErrNotFound, params.Behavior, params.Path)
	}
	return c, c.behaviors[params.Behavior], nil
}

// eventOf returns the event name for metrics labels, if the behavior has
// one.
func eventOf(b Behavior) string {
	if e, ok := b.(interface{ Event() string }); ok {
		return e.Event()
	}
	return ""
}

func withSlash(path string) string {
	if !strings.HasSuffix(path, "/") {
		return path + "/"
	}
	return path
}
