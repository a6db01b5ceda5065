package hxevent

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Flash levels for toast notifications.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-time notification added to a callback response with
// AjaxRequestTarget.Flash.
type Flash struct {
	Level   string // success, error, warning, info
	Message string
}

// toastsID is the markup id of the ToastContainer element.
const toastsID = "toasts"

// flashDismissMillis is read by the client runtime from data-auto-dismiss.
const flashDismissMillis = 3000

// FlashFragment renders flashes as an out-of-band fragment the client
// runtime appends to the ToastContainer. No flashes render nothing.
func FlashFragment(flashes []Flash) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(flashes) == 0 {
			return nil
		}
		if _, err := fmt.Fprintf(w, `<div id="%s" hx-swap-oob="%s">`, toastsID, SwapBeforeEnd); err != nil {
			return err
		}
		for _, f := range flashes {
			if _, err := fmt.Fprintf(w, `<div class="toast toast-%s" data-auto-dismiss="%d">%s</div>`,
				templ.EscapeString(f.Level), flashDismissMillis, templ.EscapeString(f.Message)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// RenderFlashesOOB returns FlashFragment as a string, for handlers that
// write their own responses.
func RenderFlashesOOB(flashes []Flash) string {
	var sb strings.Builder
	_ = FlashFragment(flashes).Render(context.Background(), &sb) // strings.Builder never fails
	return sb.String()
}

// ToastContainer renders the container flash fragments are appended to.
// Put it once in the page body.
func ToastContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div id="%s" class="toast-container"></div>`, toastsID)
		return err
	})
}
