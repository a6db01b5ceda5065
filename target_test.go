package hxevent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAjaxRequestTarget_Write(t *testing.T) {
	root := NewComponent("root", nil)
	row := NewComponent("row", Text("tr", "Clicked 2"))
	root.Add(row)
	p := NewPage("Target", root)
	_ = row.SetMarkupID("row1")

	target := NewAjaxRequestTarget(p, nil)
	target.Add(row, row)
	target.AppendJavaScript(`console.log("</script>")`)
	target.Flash(FlashSuccess, "Saved")
	target.Trigger("row:clicked")
	target.Header("X-Row", "row1")

	rec := httptest.NewRecorder()
	if err := target.Write(context.Background(), rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	body := rec.Body.String()
	if strings.Count(body, `<tr id="row1">`) != 1 {
		t.Errorf("row should be rendered once: %s", body)
	}
	if !strings.Contains(body, `toast-success`) {
		t.Errorf("missing flash: %s", body)
	}
	if !strings.Contains(body, `<script data-eval>console.log("<\/script>")</script>`) {
		t.Errorf("script not escaped: %s", body)
	}
	if rec.Header().Get("HX-Trigger") != "row:clicked" || rec.Header().Get("X-Row") != "row1" {
		t.Errorf("headers = %v", rec.Header())
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAjaxRequestTarget_Redirect(t *testing.T) {
	target := NewAjaxRequestTarget(nil, nil)
	target.Add(NewComponent("ignored", Text("p", "x")))
	target.Redirect("/done")

	rec := httptest.NewRecorder()
	if err := target.Write(context.Background(), rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if rec.Header().Get("HX-Redirect") != "/done" {
		t.Errorf("HX-Redirect = %q", rec.Header().Get("HX-Redirect"))
	}
	if rec.Body.Len() != 0 {
		t.Errorf("redirect should have no body, got %s", rec.Body.String())
	}
}

func TestAjaxRequestTarget_Status(t *testing.T) {
	target := NewAjaxRequestTarget(nil, nil)
	target.Status(http.StatusAccepted)
	target.Trigger("saved", map[string]any{"id": 1})

	rec := httptest.NewRecorder()
	if err := target.Write(context.Background(), rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
	if rec.Header().Get("HX-Trigger") != `{"saved":{"id":1}}` {
		t.Errorf("HX-Trigger = %s", rec.Header().Get("HX-Trigger"))
	}
}

func TestAjaxRequestTarget_RebindsDirectListeners(t *testing.T) {
	root := NewComponent("root", nil)
	button := NewComponent("button", Text("button", "Go"))
	root.Add(button)
	p := NewPage("Rebind", root)
	click, _ := NewAjaxEventBehavior("click", nil)
	_ = button.AddBehavior(click)

	target := NewAjaxRequestTarget(p, nil)
	target.Add(button)
	rec := httptest.NewRecorder()
	if err := target.Write(context.Background(), rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(rec.Body.String(), `<script data-eval>Wicket.Ajax.ajax(`) {
		t.Errorf("re-rendered component lost its listener: %s", rec.Body.String())
	}
}
