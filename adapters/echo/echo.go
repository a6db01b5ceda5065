// Package hxeventecho provides Echo framework integration for hxevent pages.
//
// Mount the callback handler onto an Echo instance and serve pages from
// ordinary routes:
//
//	e := echo.New()
//	reg := hxeventecho.Mount(e, key)
//	e.GET("/", hxeventecho.Page(reg, newDemoPage))
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	reg := hxeventecho.MountGroup(g, "/app", key)
package hxeventecho

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxevent"
)

// Mount creates a registry and mounts its handler on an Echo instance. The
// options are passed to hxevent.NewRegistry; a nil key generates a random
// one (suitable for development only).
//
//	reg := hxeventecho.Mount(e, key, hxevent.WithLogger(logger))
func Mount(e *echo.Echo, key []byte, opts ...hxevent.Option) *hxevent.Registry {
	reg := hxevent.NewRegistry(key, opts...)
	h := echo.WrapHandler(reg.Handler())
	for _, path := range mountPaths(reg, "") {
		e.Any(path+"*", h)
	}
	return reg
}

// MountGroup creates a registry and mounts its handler on an Echo group,
// so callbacks share the group's middleware (auth, logging, etc.). prefix
// must be the group's prefix: callback URLs are absolute, so the registry
// paths default to prefix+"/_w/" and prefix+"/_w/res/".
//
//	g := e.Group("/app", authMiddleware)
//	reg := hxeventecho.MountGroup(g, "/app", key)
func MountGroup(g *echo.Group, prefix string, key []byte, opts ...hxevent.Option) *hxevent.Registry {
	prefix = strings.TrimSuffix(prefix, "/")
	opts = append([]hxevent.Option{
		hxevent.WithPath(prefix + hxevent.DefaultPath),
		hxevent.WithResourcePath(prefix + hxevent.DefaultResourcePath),
	}, opts...)

	reg := hxevent.NewRegistry(key, opts...)
	h := echo.WrapHandler(reg.Handler())
	for _, path := range mountPaths(reg, prefix) {
		g.Any(path+"*", h)
	}
	return reg
}

// Page serves a freshly built page on every request.
//
//	e.GET("/", hxeventecho.Page(reg, func(c echo.Context) (*hxevent.Page, error) {
//	    return newDemoPage(c.QueryParam("rows"))
//	}))
func Page(reg *hxevent.Registry, factory func(c echo.Context) (*hxevent.Page, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := reg.PageHandler(func(r *http.Request) (*hxevent.Page, error) {
			return factory(c)
		})
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxeventecho.Render(c, myTemplate())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}

// mountPaths returns the route prefixes, relative to prefix, the registry
// handler must receive. The resource path needs its own route unless it
// lives below the callback path.
func mountPaths(reg *hxevent.Registry, prefix string) []string {
	paths := []string{strings.TrimPrefix(reg.Path(), prefix)}
	if !strings.HasPrefix(reg.ResourcePath(), reg.Path()) {
		paths = append(paths, strings.TrimPrefix(reg.ResourcePath(), prefix))
	}
	return paths
}
