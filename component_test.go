package hxevent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func TestComponent_Path(t *testing.T) {
	root := NewComponent("root", nil)
	table := NewComponent("table", nil)
	row := NewComponent("row3", nil)
	root.Add(table.Add(row))

	if got := root.Path(); got != "" {
		t.Errorf("root.Path() = %q, want empty", got)
	}
	if got := row.Path(); got != "table:row3" {
		t.Errorf("row.Path() = %q, want table:row3", got)
	}
	if row.Parent() != table || table.Child("row3") != row {
		t.Error("parent/child links not set")
	}
}

func TestComponent_PageResolution(t *testing.T) {
	root := NewComponent("root", nil)
	child := NewComponent("child", nil)
	root.Add(child)

	if child.Page() != nil {
		t.Fatal("Page() should be nil before the root is attached")
	}
	p := NewPage("Test", root)
	if child.Page() != p {
		t.Error("Page() did not resolve through the root")
	}

	found, err := p.Find("child")
	if err != nil || found != child {
		t.Errorf("Find(child) = %v, %v", found, err)
	}
	if _, err := p.Find("child:missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(missing) error = %v, want ErrNotFound", err)
	}
	if found, _ := p.Find(""); found != root {
		t.Error("Find(\"\") should return the root")
	}
}

func TestComponent_AddPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"duplicate id", func() {
			NewComponent("root", nil).Add(NewComponent("a", nil), NewComponent("a", nil))
		}},
		{"already parented", func() {
			child := NewComponent("a", nil)
			NewComponent("one", nil).Add(child)
			NewComponent("two", nil).Add(child)
		}},
		{"page root as child", func() {
			root := NewComponent("root", nil)
			NewPage("Test", root)
			NewComponent("other", nil).Add(root)
		}},
		{"empty id", func() { NewComponent("", nil) }},
		{"colon in id", func() { NewComponent("a:b", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestComponent_MarkupID(t *testing.T) {
	root := NewComponent("root", nil)
	a := NewComponent("row", nil)
	b := NewComponent("row_2", nil)
	odd := NewComponent("9 lives", nil)
	root.Add(a, b, odd)
	NewPage("Test", root)

	ids := map[string]bool{}
	for _, c := range []*Component{root, a, b, odd} {
		id := c.MarkupID()
		if !ValidMarkupID(id) {
			t.Errorf("MarkupID() = %q is not a valid markup id", id)
		}
		if ids[id] {
			t.Errorf("duplicate markup id %q", id)
		}
		ids[id] = true
		if c.MarkupID() != id {
			t.Errorf("MarkupID() not stable for %q", c.ID())
		}
	}

	if err := a.SetMarkupID("custom-row"); err != nil {
		t.Fatalf("SetMarkupID() error = %v", err)
	}
	if a.MarkupID() != "custom-row" || a.Attrs()["id"] != "custom-row" {
		t.Errorf("MarkupID() = %q after SetMarkupID", a.MarkupID())
	}
	for _, bad := range []string{"", "1abc", "a b", `a"b`, "a'b"} {
		if err := a.SetMarkupID(bad); !errors.Is(err, ErrInvalidMarkupID) {
			t.Errorf("SetMarkupID(%q) error = %v, want ErrInvalidMarkupID", bad, err)
		}
	}
}

func TestComponent_RenderNested(t *testing.T) {
	root := NewComponent("root", Text("section", "A & B"))
	item := NewComponent("item", Text("p", "child"))
	root.Add(item)
	NewPage("Test", root)
	_ = root.SetMarkupID("main")
	_ = item.SetMarkupID("item")

	var buf bytes.Buffer
	if err := root.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := `<section id="main">A &amp; B<p id="item">child</p></section>`
	if buf.String() != want {
		t.Errorf("Render() = %s, want %s", buf.String(), want)
	}
}

func TestComponent_VisitOrder(t *testing.T) {
	root := NewComponent("root", nil)
	a := NewComponent("a", nil)
	root.Add(a.Add(NewComponent("a1", nil)), NewComponent("b", nil))

	var order []string
	root.Visit(func(c *Component) { order = append(order, c.ID()) })
	if got := strings.Join(order, ","); got != "root,a,a1,b" {
		t.Errorf("Visit order = %s", got)
	}
}

func TestMetaKey(t *testing.T) {
	p := NewPage("Meta", NewComponent("root", nil))
	counter := NewMetaKey[int]("counter")
	other := NewMetaKey[int]("counter")

	if _, ok := counter.Get(p); ok {
		t.Fatal("Get() on empty page should report missing")
	}
	counter.Set(p, 3)
	if v, ok := counter.Get(p); !ok || v != 3 {
		t.Errorf("Get() = %d, %v", v, ok)
	}
	if _, ok := other.Get(p); ok {
		t.Error("keys with the same name must not collide")
	}
	if v := counter.SetIfAbsent(p, func() int { return 9 }); v != 3 {
		t.Errorf("SetIfAbsent() = %d, want existing 3", v)
	}
	counter.Delete(p)
	if v := counter.SetIfAbsent(p, func() int { return 9 }); v != 9 {
		t.Errorf("SetIfAbsent() = %d, want 9", v)
	}

	p.Discard()
	if _, ok := counter.Get(p); ok {
		t.Error("Discard() should clear metadata")
	}
}

func TestEventSet(t *testing.T) {
	var nilSet *EventSet
	if nilSet.Has("click") || nilSet.Len() != 0 || len(nilSet.Names()) != 0 {
		t.Error("nil set should be empty")
	}

	s := NewEventSet()
	if !s.Add("keyup") || !s.Add("click") || s.Add("click") {
		t.Error("Add() reported wrong novelty")
	}
	if s.Len() != 2 || !s.Has("click") || s.Has("change") {
		t.Errorf("set = %v", s.Names())
	}
	if got := strings.Join(s.Names(), ","); got != "click,keyup" {
		t.Errorf("Names() = %s, want sorted", got)
	}
}

type recordingBehavior struct {
	log *[]string
	id  string
}

func (b *recordingBehavior) Bind(c *Component) error { return nil }
func (b *recordingBehavior) Configure(c *Component) { *b.log = append(*b.log, "configure:"+b.id) }
func (b *recordingBehavior) RenderHead(c *Component, r *HeaderResponse) {
	*b.log = append(*b.log, "head:"+b.id)
}
func (b *recordingBehavior) Detach(c *Component) { *b.log = append(*b.log, "detach:"+b.id) }

func TestPage_RenderLifecycle(t *testing.T) {
	var log []string
	root := NewComponent("root", nil)
	child := NewComponent("child", nil)
	root.Add(child)
	_ = root.AddBehavior(&recordingBehavior{log: &log, id: "root"})
	_ = child.AddBehavior(&recordingBehavior{log: &log, id: "child"})
	p := NewPage("Lifecycle", root)

	var buf bytes.Buffer
	if err := p.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "configure:root,configure:child,head:root,head:child,detach:root,detach:child"
	if got := strings.Join(log, ","); got != want {
		t.Errorf("lifecycle = %s, want %s", got, want)
	}
	if !strings.HasPrefix(buf.String(), "<!DOCTYPE html>") || !strings.Contains(buf.String(), "<title>Lifecycle</title>") {
		t.Errorf("unexpected document: %s", buf.String())
	}
}

func TestPage_DetachRunsOnError(t *testing.T) {
	var log []string
	root := NewComponent("root", Text("div", ""))
	failing := NewComponent("failing", func(c *Component) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return errors.New("boom")
		})
	})
	root.Add(failing)
	_ = failing.AddBehavior(&recordingBehavior{log: &log, id: "failing"})
	p := NewPage("Fail", root)

	if err := p.Render(context.Background(), io.Discard); err == nil {
		t.Fatal("expected render error")
	}
	if got := strings.Join(log, ","); got != "configure:failing,detach:failing" {
		t.Errorf("lifecycle = %s", got)
	}
}
