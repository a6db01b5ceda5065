package main

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxevent"
)

// demoTable is the state behind one rendered demo page.
type demoTable struct {
	counts []int
	total  *hxevent.Component
	rows   []*hxevent.Component
}

// newDemoPage builds a table of n rows. Every row has its own click
// behavior, but the table delegates click, so the browser binds a single
// listener on the table element.
func newDemoPage(n int) (*hxevent.Page, error) {
	if n < 1 {
		return nil, fmt.Errorf("rows must be positive, got %d", n)
	}
	d := &demoTable{counts: make([]int, n)}

	root := hxevent.NewComponent("root", renderLayout)
	d.total = hxevent.NewComponent("total", func(c *hxevent.Component) templ.Component {
		return writef(`<p id="%s">Total clicks: %d</p>`, c.MarkupID(), d.sum())
	})
	table := hxevent.NewComponent("table", renderTable)
	reset := hxevent.NewComponent("reset", hxevent.Text("button", "Reset"))
	root.Add(d.total, table, reset)

	delegate, err := hxevent.NewEventDelegatingBehavior("click")
	if err != nil {
		return nil, err
	}
	if err := table.AddBehavior(delegate); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		row, err := d.newRow(i)
		if err != nil {
			return nil, err
		}
		table.Add(row)
	}

	// reset sits outside the table, so it keeps a listener of its own.
	resetClick, err := hxevent.NewAjaxEventBehavior("click", d.reset)
	if err != nil {
		return nil, err
	}
	if err := reset.AddBehavior(resetClick); err != nil {
		return nil, err
	}

	return hxevent.NewPage("hxevent demo", root), nil
}

func (d *demoTable) newRow(i int) (*hxevent.Component, error) {
	row := hxevent.NewComponent(fmt.Sprintf("row%d", i), func(c *hxevent.Component) templ.Component {
		return writef(`<tr id="%s"><td>Row %d</td><td>%d clicks</td></tr>`, c.MarkupID(), i+1, d.counts[i])
	})
	click, err := hxevent.NewAjaxEventBehavior("click", func(ctx context.Context, target *hxevent.AjaxRequestTarget) error {
		d.counts[i]++
		target.Add(row, d.total)
		target.Trigger("row:clicked", map[string]any{"row": i + 1, "count": d.counts[i]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := row.AddBehavior(click); err != nil {
		return nil, err
	}
	d.rows = append(d.rows, row)
	return row, nil
}

func (d *demoTable) reset(ctx context.Context, target *hxevent.AjaxRequestTarget) error {
	for i := range d.counts {
		d.counts[i] = 0
	}
	target.Add(d.rows...)
	target.Add(d.total)
	target.Flash(hxevent.FlashInfo, "Counters reset")
	return nil
}

func (d *demoTable) sum() int {
	total := 0
	for _, n := range d.counts {
		total += n
	}
	return total
}

func renderLayout(c *hxevent.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<main id="%s"><h1>Delegated clicks</h1>`, c.MarkupID()); err != nil {
			return err
		}
		if err := c.RenderChildren().Render(ctx, w); err != nil {
			return err
		}
		if err := hxevent.ToastContainer().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main>`)
		return err
	})
}

func renderTable(c *hxevent.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<table id="%s"><tbody>`, c.MarkupID()); err != nil {
			return err
		}
		if err := c.RenderChildren().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}

func writef(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}
