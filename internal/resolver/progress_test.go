package resolver

import "testing"

// This is a regression test for a verbosity-filter inversion bug: Log
// once suppressed everything at LevelSilent and showed everything at
// LevelVerbose backwards from what the level names promise.
func TestProgressLogRespectsMinLevel(t *testing.T) {
	p := NewProgress(LevelSilent)
	p.Log(1, LevelSummary, "should be suppressed")
	p.Log(1, LevelVerbose, "should also be suppressed")
	if len(p.Entries()) != 0 {
		t.Fatalf("LevelSilent should suppress every entry, got %+v", p.Entries())
	}

	p = NewProgress(LevelSummary)
	p.Log(1, LevelSummary, "summary entry")
	p.Log(1, LevelVerbose, "verbose entry should be suppressed at summary level")
	entries := p.Entries()
	if len(entries) != 1 || entries[0].Message != "summary entry" {
		t.Fatalf("got %+v", entries)
	}

	p = NewProgress(LevelVerbose)
	p.Log(1, LevelSummary, "summary entry")
	p.Log(1, LevelVerbose, "verbose entry")
	if len(p.Entries()) != 2 {
		t.Fatalf("LevelVerbose should show everything, got %+v", p.Entries())
	}
}

func TestProgressEndIsIdempotentAndObservable(t *testing.T) {
	p := NewProgress(LevelSilent)
	if p.Ended() {
		t.Fatal("a fresh Progress should not be ended")
	}
	p.End()
	p.End()
	if !p.Ended() {
		t.Fatal("expected Ended() to report true after End()")
	}
}

func TestProgressEntriesReturnsACopy(t *testing.T) {
	p := NewProgress(LevelVerbose)
	p.Log(1, LevelVerbose, "one")
	entries := p.Entries()
	entries[0].Message = "mutated"
	if p.Entries()[0].Message != "one" {
		t.Error("Entries() should return an independent copy")
	}
}
