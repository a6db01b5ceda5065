package hxevent

// SwapMode defines how a callback response replaces its target on the
// client. The values mirror HTMX hx-swap, so markup written for HTMX keeps
// working with the same strings.
type SwapMode string

const (
	// SwapOuter replaces the target element itself. This is the default.
	SwapOuter SwapMode = "outerHTML"

	// SwapInner replaces the target's children, keeping the element.
	SwapInner SwapMode = "innerHTML"

	// SwapBeforeEnd appends to the target's children.
	SwapBeforeEnd SwapMode = "beforeend"

	// SwapAfterEnd inserts after the target, as its next sibling.
	SwapAfterEnd SwapMode = "afterend"

	// SwapBeforeBegin inserts before the target, as its previous sibling.
	SwapBeforeBegin SwapMode = "beforebegin"

	// SwapAfterBegin prepends to the target's children.
	SwapAfterBegin SwapMode = "afterbegin"

	// SwapDelete removes the target. The response content is ignored.
	SwapDelete SwapMode = "delete"

	// SwapNone leaves the document untouched.
	SwapNone SwapMode = "none"
)
