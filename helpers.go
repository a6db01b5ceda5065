package hxevent

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes a templ component as an HTML response.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsAjax returns true if the request was sent by the client runtime (or by
// HTMX, which uses the same header).
func IsAjax(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// TriggerID returns the markup id of the element that triggered the
// callback. Empty if not present.
func TriggerID(r *http.Request) string {
	return r.Header.Get("HX-Trigger")
}

// CurrentURL returns the URL the browser is on, from HX-Current-URL.
func CurrentURL(r *http.Request) string {
	return r.Header.Get("HX-Current-URL")
}

// BuildTriggerHeader builds the HX-Trigger header value.
//
//	"item-updated", nil             -> item-updated
//	"filter:changed", {"s": "on"}   -> {"filter:changed":{"s":"on"}}
//
// Returns "" when there is no event.
func BuildTriggerHeader(trigger string, data map[string]any) string {
	if trigger == "" {
		return ""
	}
	if data == nil {
		return trigger
	}
	encoded, err := json.Marshal(map[string]any{trigger: data})
	if err != nil {
		return trigger
	}
	return string(encoded)
}
