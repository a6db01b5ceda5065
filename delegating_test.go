package hxevent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDelegatingHost(t *testing.T, event string) (*Page, *Component, *EventDelegatingBehavior) {
	t.Helper()

	host := NewComponent("table", Text("table", ""))
	require.NoError(t, host.SetMarkupID("host"))
	d, err := NewEventDelegatingBehavior(event)
	require.NoError(t, err)
	require.NoError(t, host.AddBehavior(d))

	root := NewComponent("root", nil)
	root.Add(host)
	return NewPage("Delegation", root), host, d
}

// delegateMap extracts and decodes the attribute map of a delegate call.
func delegateMap(t *testing.T, script, prefix string) map[string]json.RawMessage {
	t.Helper()

	require.True(t, strings.HasPrefix(script, prefix), "script %q lacks prefix %q", script, prefix)
	require.True(t, strings.HasSuffix(script, ")"), script)
	literal := strings.TrimSuffix(strings.TrimPrefix(script, prefix), ")")

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(literal), &m), literal)
	return m
}

func TestEventDelegatingBehavior_DistinctContributions(t *testing.T) {
	_, host, d := newDelegatingHost(t, "click")

	payloads := map[string]string{
		"row1": `{"u":"/cb?p=1","e":"click"}`,
		"row2": `{"u":"/cb?p=2","e":"click"}`,
		"row3": `{"u":"/cb?p=3","e":"click"}`,
	}
	for id, attrs := range payloads {
		d.Contribute(id, attrs)
	}

	m := delegateMap(t, d.CallbackScript(host), "Wicket.Event.delegate('host', 'click', ")
	require.Len(t, m, len(payloads))
	for id, attrs := range payloads {
		assert.JSONEq(t, attrs, string(m[id]), id)
	}
	assert.Equal(t, 3, d.Contributions())
}

func TestEventDelegatingBehavior_LastContributionWins(t *testing.T) {
	_, host, d := newDelegatingHost(t, "click")

	d.Contribute("row1", `{"u":"/first"}`)
	d.Contribute("row1", `{"u":"/second"}`)

	m := delegateMap(t, d.CallbackScript(host), "Wicket.Event.delegate('host', 'click', ")
	require.Len(t, m, 1)
	assert.JSONEq(t, `{"u":"/second"}`, string(m["row1"]))
}

func TestEventDelegatingBehavior_DetachReleasesContributions(t *testing.T) {
	_, host, d := newDelegatingHost(t, "click")

	d.Contribute("row1", `{"u":"/cb"}`)
	d.Detach(host)

	assert.Equal(t, "Wicket.Event.delegate('host', 'click', {})", d.CallbackScript(host))
	assert.Zero(t, d.Contributions())

	// A new request starts from scratch.
	d.Contribute("row2", `{"u":"/cb2"}`)
	m := delegateMap(t, d.CallbackScript(host), "Wicket.Event.delegate('host', 'click', ")
	assert.Len(t, m, 1)
	assert.Contains(t, m, "row2")
}

func TestEventDelegatingBehavior_OnEventAlwaysFails(t *testing.T) {
	p, host, d := newDelegatingHost(t, "click")
	ctx := context.Background()
	target := NewAjaxRequestTarget(p, nil)

	err := d.OnEvent(ctx, host, target)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	assert.True(t, IsUnsupported(err))

	d.Configure(host)
	d.Contribute("row1", `{}`)
	assert.ErrorIs(t, d.OnEvent(ctx, host, target), ErrUnsupportedOperation)

	d.Detach(host)
	assert.ErrorIs(t, d.OnEvent(ctx, host, target), ErrUnsupportedOperation)
	assert.ErrorIs(t, d.OnEvent(ctx, nil, nil), ErrUnsupportedOperation)
}

func TestEventDelegatingBehavior_ConfigureRegistersEventOnce(t *testing.T) {
	p, host, d := newDelegatingHost(t, "click")
	assert.Nil(t, p.EnabledEvents())

	d.Configure(host)
	require.NotNil(t, p.EnabledEvents())
	assert.Equal(t, 1, p.EnabledEvents().Len())
	assert.True(t, p.EnabledEvents().Has("click"))

	d.Configure(host)
	assert.Equal(t, 1, p.EnabledEvents().Len())

	// A second delegating behavior for the same event shares the entry.
	other := NewComponent("list", nil)
	d2, err := NewEventDelegatingBehavior("onclick")
	require.NoError(t, err)
	require.NoError(t, other.AddBehavior(d2))
	p.Root().Add(other)
	d2.Configure(other)
	assert.Equal(t, 1, p.EnabledEvents().Len())

	d3, err := NewEventDelegatingBehavior("change")
	require.NoError(t, err)
	require.NoError(t, other.AddBehavior(d3))
	d3.Configure(other)
	assert.Equal(t, []string{"change", "click"}, p.EnabledEvents().Names())
}

func TestEventDelegatingBehavior_ConfigureWithoutPage(t *testing.T) {
	host := NewComponent("table", nil)
	d, err := NewEventDelegatingBehavior("click")
	require.NoError(t, err)
	require.NoError(t, host.AddBehavior(d))

	d.Configure(host)

	p := NewPage("Late", host)
	d.Configure(host)
	assert.True(t, p.EnabledEvents().Has("click"))
}

func TestEventDelegatingBehavior_ScriptStaysValidWithHostileInput(t *testing.T) {
	_, host, d := newDelegatingHost(t, "click")

	d.Contribute(`row"1`, `it's a "quoted" \ payload`)
	d.Contribute(`row\2`, `{"u":"/cb","x":"</script>"}`)
	d.Contribute("row3", `{"u": `)

	script := d.CallbackScript(host)
	assert.NotContains(t, script, "</script>")

	m := delegateMap(t, script, "Wicket.Event.delegate('host', 'click', ")
	require.Len(t, m, 3)

	var s string
	require.NoError(t, json.Unmarshal(m[`row"1`], &s))
	assert.Equal(t, `it's a "quoted" \ payload`, s)
	assert.JSONEq(t, `{"u":"/cb","x":"</script>"}`, string(m[`row\2`]))
	require.NoError(t, json.Unmarshal(m["row3"], &s))
	assert.Equal(t, `{"u": `, s)
}

func TestEventDelegatingBehavior_RenderHeadDependencyOrder(t *testing.T) {
	_, host, d := newDelegatingHost(t, "click")
	d.Configure(host)

	r := NewHeaderResponse("/res")
	d.RenderHead(host, r)

	assert.Equal(t, []string{"/res/wicket-event.js", "/res/event-delegating.js"}, r.Scripts())
	assert.Equal(t, []string{"Wicket.Event.delegate('host', 'click', {})"}, r.DomReadyScripts())
}

func TestNewEventDelegatingBehavior_InvalidEvent(t *testing.T) {
	for _, event := range []string{"", "cl ick", "click'", "1click", "onclick()"} {
		_, err := NewEventDelegatingBehavior(event)
		assert.ErrorIs(t, err, ErrInvalidEvent, event)
	}
}

func TestPageRender_DelegatesChildListeners(t *testing.T) {
	p, host, d := newDelegatingHost(t, "click")

	var rows []*Component
	for _, id := range []string{"r1", "r2", "r3"} {
		row := NewComponent(id, Text("tr", id))
		b, err := NewAjaxEventBehavior("click", nil)
		require.NoError(t, err)
		require.NoError(t, row.AddBehavior(b))
		host.Add(row)
		rows = append(rows, row)
	}

	result, err := TestRenderPage(p)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(result.HTML, "Wicket.Event.delegate("))
	assert.Zero(t, strings.Count(result.HTML, "Wicket.Ajax.ajax("))
	for _, row := range rows {
		assert.Contains(t, result.HTML, `"`+row.MarkupID()+`":{`)
	}

	event := strings.Index(result.HTML, "wicket-event.js")
	delegation := strings.Index(result.HTML, "event-delegating.js")
	assert.True(t, event >= 0 && delegation > event, "event runtime must load first")

	// Request scoped state is gone after the render.
	assert.Zero(t, d.Contributions())
	assert.True(t, p.EnabledEvents().Has("click"))
}

func TestPageRender_OtherEventsKeepOwnListeners(t *testing.T) {
	p, host, _ := newDelegatingHost(t, "click")

	field := NewComponent("field", Text("input", ""))
	change, err := NewAjaxEventBehavior("change", nil)
	require.NoError(t, err)
	require.NoError(t, field.AddBehavior(change))
	host.Add(field)

	result, err := TestRenderPage(p)
	require.NoError(t, err)

	assert.Contains(t, result.HTML, "Wicket.Event.delegate('host', 'click', {})")
	assert.Equal(t, 1, strings.Count(result.HTML, "Wicket.Ajax.ajax("))
	assert.Contains(t, result.HTML, `"e":"change"`)
}

func TestEventDelegatingBehavior_ScriptEscapesLineSeparators(t *testing.T) {
	_, host, d := newDelegatingHost(t, "click")
	d.Contribute("a", "{\"x\":\"\u2028\"}")

	script := d.CallbackScript(host)
	assert.NotContains(t, script, "\u2028")
	assert.Equal(t, `Wicket.Event.delegate('host', 'click', {"a":{"x":"\u2028"}})`, script)
}
