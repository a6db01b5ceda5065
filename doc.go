// Package hxevent renders server-side component pages whose DOM events are
// sent back to the server as Ajax callbacks, with optional event
// delegation.
//
// # Core Concepts
//
// A Page owns a tree of Components. Behaviors attach client and server
// logic to a component and are driven through explicit lifecycle hooks
// (Bind, Configure, RenderHead, Detach). The page, not the behavior, decides
// when each hook runs.
//
//	root := hxevent.NewComponent("root", nil)
//	row := hxevent.NewComponent("row1", hxevent.Text("li", "first"))
//	click, _ := hxevent.NewAjaxEventBehavior("click", func(ctx context.Context, t *hxevent.AjaxRequestTarget) error {
//	    t.Flash(hxevent.FlashInfo, "clicked")
//	    return nil
//	})
//	row.AddBehavior(click)
//	root.Add(row)
//	page := hxevent.NewPage("Demo", root)
//
// # Event Delegation
//
// A page listing hundreds of clickable rows would normally bind one
// listener per row. Adding an EventDelegatingBehavior for the same event
// to a common ancestor changes that: during the head pass every
// AjaxEventBehavior below it contributes its attributes to the ancestor,
// and the browser binds one listener that dispatches by element id:
//
//	list := hxevent.NewComponent("list", hxevent.Text("ul", ""))
//	delegate, _ := hxevent.NewEventDelegatingBehavior("click")
//	list.AddBehavior(delegate)
//
// The delegated events of a page are tracked in page metadata under
// EnabledEventsKey. The contributed attributes are request scoped and
// dropped when the page detaches.
//
// # Registry and Callbacks
//
// A Registry keeps pages in a PageStore and serves their callbacks. Callback
// URLs carry signed (or encrypted) parameters naming the page, the component
// path and the behavior; the registry serializes requests per page, so
// behaviors never need locks.
//
//	reg := hxevent.NewRegistry(key)
//	mux.Handle("/", reg.PageHandler(newPage))
//	mux.Handle(hxevent.DefaultPath, reg.Handler())
//
// Mutating requests must carry the HX-Request: true header the client
// runtime sends, which blocks cross-origin form posts.
package hxevent
