package hxevent

import (
	"encoding/json"
	"net/http"
)

// AjaxRequestAttributes configure one client-side Ajax binding. They are
// serialized with short keys, which is what the client runtime reads.
type AjaxRequestAttributes struct {
	URL             string   `json:"u"`
	Method          string   `json:"m"`
	Event           string   `json:"e"`
	MarkupID        string   `json:"c"`
	PreventDefault  bool     `json:"pd,omitempty"`
	StopPropagation bool     `json:"sp,omitempty"`
	Target          string   `json:"t,omitempty"`
	Swap            SwapMode `json:"sw,omitempty"`
}

// JSON returns the attributes as a JSON object.
func (a AjaxRequestAttributes) JSON() string {
	if a.Method == "" {
		a.Method = http.MethodPost
	}
	data, _ := json.Marshal(a) // only strings and bools
	return string(data)
}
