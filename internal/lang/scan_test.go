package lang

import "testing"

func TestSplitTopLevelRespectsNestingAndQuotes(t *testing.T) {
	got := SplitTopLevel(`a,b(c,d),"e,f",g`, ',')
	want := []string{"a", `b(c,d)`, `"e,f"`, "g"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitTopLevelBracketNesting(t *testing.T) {
	got := SplitTopLevel(`items[a.b].x`, '.')
	want := []string{"items[a.b]", "x"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFindTopLevel(t *testing.T) {
	if idx := FindTopLevel(`a ? b : c`, '?'); idx != 2 {
		t.Errorf("got %d, want 2", idx)
	}
	if idx := FindTopLevel(`(a ? b) : c`, '?'); idx != -1 {
		t.Errorf("a '?' nested in parens should not be top-level, got %d", idx)
	}
}

func TestScanQuotedUnescapes(t *testing.T) {
	sc := &scanner{src: `'hello\nworld'`}
	got, err := sc.scanQuoted()
	if err != nil {
		t.Fatalf("scanQuoted: %v", err)
	}
	if got != "hello\nworld" {
		t.Errorf("got %q", got)
	}
}

func TestScanQuotedUnterminated(t *testing.T) {
	sc := &scanner{src: `'unterminated`}
	if _, err := sc.scanQuoted(); err == nil {
		t.Error("expected an error for an unterminated string literal")
	}
}
