package hxeventecho

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxevent"
)

func newTestPage() (*hxevent.Page, *hxevent.Component, *hxevent.AjaxEventBehavior) {
	root := hxevent.NewComponent("root", nil)
	button := hxevent.NewComponent("button", hxevent.Text("button", "Go"))
	root.Add(button)
	click, _ := hxevent.NewAjaxEventBehavior("click", func(ctx context.Context, target *hxevent.AjaxRequestTarget) error {
		target.Flash(hxevent.FlashSuccess, "Clicked")
		return nil
	})
	_ = button.AddBehavior(click)
	return hxevent.NewPage("Echo", root), button, click
}

func TestMount(t *testing.T) {
	e := echo.New()
	reg := Mount(e, []byte("test-key"))

	if reg == nil {
		t.Fatal("Mount returned nil registry")
	}
	if reg.Path() != hxevent.DefaultPath {
		t.Errorf("Path() = %s, want %s", reg.Path(), hxevent.DefaultPath)
	}
}

func TestMountWithPath(t *testing.T) {
	e := echo.New()
	reg := Mount(e, nil, hxevent.WithPath("/events"), hxevent.WithResourcePath("/static/hx"))

	req := httptest.NewRequest(http.MethodGet, "/static/hx/wicket-event.js", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected runtime at separate resource path, got %d", rec.Code)
	}
	if reg.Path() != "/events/" {
		t.Errorf("Path() = %s", reg.Path())
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	var hits int
	g := e.Group("/app", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			hits++
			return next(c)
		}
	})
	reg := MountGroup(g, "/app", []byte("test-key"))

	if reg.Path() != "/app/_w/" {
		t.Fatalf("Path() = %s, want /app/_w/", reg.Path())
	}

	req := httptest.NewRequest(http.MethodGet, "/app/_w/res/event-delegating.js", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for runtime below group, got %d", rec.Code)
	}
	if hits != 1 {
		t.Errorf("group middleware ran %d times, want 1", hits)
	}
}

func TestPageAndCallback(t *testing.T) {
	e := echo.New()
	reg := Mount(e, []byte("test-key"))
	p, button, click := newTestPage()
	e.GET("/", Page(reg, func(c echo.Context) (*hxevent.Page, error) { return p, nil }))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Wicket.Ajax.ajax(") {
		t.Fatalf("page render = %d %s", rec.Code, rec.Body.String())
	}

	result, err := hxevent.TestCallback(reg, button, click)
	if err != nil {
		t.Fatalf("TestCallback() error = %v", err)
	}
	if !result.HasFlash(hxevent.FlashSuccess, "Clicked") {
		t.Errorf("Flashes = %v", result.Flashes)
	}
}

func TestCSRFProtection(t *testing.T) {
	e := echo.New()
	Mount(e, nil)

	// POST without HX-Request header should be forbidden
	req := httptest.NewRequest(http.MethodPost, "/_w/cb", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for POST without HX-Request, got %d", rec.Code)
	}
}

func TestGETAllowed(t *testing.T) {
	e := echo.New()
	Mount(e, nil)

	// GET requests don't need HX-Request header
	req := httptest.NewRequest(http.MethodGet, "/_w/res/wicket-event.js", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for runtime, got %d", rec.Code)
	}
}

func TestRender(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := Render(c, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>hi</p>")
		return err
	}))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if rec.Body.String() != "<p>hi</p>" || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Render() = %q %q", rec.Body.String(), rec.Header().Get("Content-Type"))
	}
}
