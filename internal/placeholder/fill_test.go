package placeholder

import (
	"strings"
	"testing"

	"github.com/mibar/jtq/internal/evalengine"
	"github.com/mibar/jtq/internal/node"
)

func newFiller(xml bool) *Filler {
	return &Filler{Engine: evalengine.New(nil), XML: xml}
}

func TestFillOnceNoPlaceholdersIsAFastPathNoop(t *testing.T) {
	f := newFiller(false)
	out := f.FillOnce("plain text, no braces", node.NewRegistry())
	if !out.Complete || out.Output != "plain text, no braces" {
		t.Fatalf("got %+v", out)
	}
}

func TestFillOnceResolvesKnownDataset(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("name", "alice")
	f := newFiller(false)
	out := f.FillOnce("hello {{name}}!", reg)
	if !out.Complete || out.Output != "hello alice!" {
		t.Fatalf("got %+v", out)
	}
}

func TestFillOnceReportsUnresolvedDatasetAndLeavesPlaceholderVerbatim(t *testing.T) {
	reg := node.NewRegistry()
	f := newFiller(false)
	out := f.FillOnce("hello {{name}}!", reg)
	if out.Complete {
		t.Fatal("expected an incomplete outcome")
	}
	if len(out.NeedsDatasets) != 1 || out.NeedsDatasets[0] != "name" {
		t.Fatalf("got %+v", out.NeedsDatasets)
	}
	if !strings.Contains(out.Output, "{{name}}") {
		t.Errorf("expected the unresolved placeholder left verbatim, got %q", out.Output)
	}
}

func TestFillOnceDedupesRepeatedUnresolvedDataset(t *testing.T) {
	reg := node.NewRegistry()
	f := newFiller(false)
	out := f.FillOnce("{{name}} and {{name}} again", reg)
	if len(out.NeedsDatasets) != 1 {
		t.Fatalf("expected a single deduped entry, got %+v", out.NeedsDatasets)
	}
}

func TestFillOnceContainerRendersAsJSON(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("items", []node.Node{"a", "b"})
	f := newFiller(false)
	out := f.FillOnce("{{items}}", reg)
	if !out.Complete || out.Output != `["a","b"]` {
		t.Fatalf("got %+v", out)
	}
}

func TestFillOnceEmptyValueRendersNothing(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("blank", "")
	f := newFiller(false)
	out := f.FillOnce("[{{blank}}]", reg)
	if !out.Complete || out.Output != "[]" {
		t.Fatalf("got %+v", out)
	}
}

func TestFillOnceXMLModeCarvesEmptyElement(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("middle", "")
	f := newFiller(true)
	out := f.FillOnce("<a>x</a><middle>{{middle}}</middle><b>y</b>", reg)
	if !out.Complete {
		t.Fatalf("got %+v", out)
	}
	if strings.Contains(out.Output, "middle") {
		t.Errorf("expected the <middle> element carved out entirely, got %q", out.Output)
	}
	if out.Output != "<a>x</a><b>y</b>" {
		t.Errorf("got %q", out.Output)
	}
}

func TestFillOnceMalformedQueryIsUnresolvable(t *testing.T) {
	reg := node.NewRegistry()
	f := newFiller(false)
	out := f.FillOnce("{{+}}", reg)
	if out.Complete {
		t.Fatal("expected an incomplete outcome for a malformed query")
	}
	if len(out.Unresolvable) != 1 {
		t.Fatalf("got %+v", out.Unresolvable)
	}
}
