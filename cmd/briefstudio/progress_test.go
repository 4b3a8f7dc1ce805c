package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

func TestProgressSkipsRepeats(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf)

	p.report(brief.StageBriefs, 50)
	p.report(brief.StageBriefs, 50)
	p.report(brief.StageBriefs, 100)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "[3/5]") {
		t.Errorf("expected briefs to be step 3, got %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "100%") {
		t.Errorf("expected 100%%, got %q", lines[1])
	}
}

func TestBar(t *testing.T) {
	if got := strings.Count(bar(0, 10), "░"); got != 10 {
		t.Errorf("empty bar: expected 10 blanks, got %d", got)
	}
	if got := strings.Count(bar(150, 10), "█"); got != 10 {
		t.Errorf("overfull bar: expected 10 blocks, got %d", got)
	}
}
