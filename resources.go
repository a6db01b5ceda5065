package hxevent

import (
	"embed"
	"io/fs"
	"net/http"
)

// Default mount points.
const (
	DefaultPath         = "/_w/"
	DefaultResourcePath = "/_w/res/"
)

//go:embed res/js/*.js
var resourceFS embed.FS

// EventRuntime is the generic client event runtime: dom-ready hooks,
// listeners and the Ajax call.
var EventRuntime = JavaScriptReference{Name: "wicket-event.js"}

// DelegationRuntime provides Wicket.Event.delegate. It depends on
// EventRuntime, which is always loaded first.
var DelegationRuntime = JavaScriptReference{
	Name: "event-delegating.js",
	Deps: []JavaScriptReference{EventRuntime},
}

// ResourceHandler serves the embedded client runtimes. Mount it with the
// resource path stripped:
//
//	mux.Handle("/_w/res/", http.StripPrefix("/_w/res/", hxevent.ResourceHandler()))
func ResourceHandler() http.Handler {
	sub, err := fs.Sub(resourceFS, "res/js")
	if err != nil {
		panic("hxevent: embedded resources missing: " + err.Error())
	}
	return http.FileServer(http.FS(sub))
}
