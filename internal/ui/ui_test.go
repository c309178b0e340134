package ui

import (
	"strings"
	"testing"

	"github.com/Gerri254/chainctl/pkg/models"
)

func TestApplicationBadgeLabel(t *testing.T) {
	got := ApplicationBadge(models.ApplicationShortlisted)
	if !strings.Contains(got, "SHORTLISTED") {
		t.Fatalf("badge = %q", got)
	}
}

func TestUnknownStatusStillRenders(t *testing.T) {
	got := JobBadge(models.JobStatus("archived"))
	if !strings.Contains(got, "ARCHIVED") {
		t.Fatalf("badge = %q", got)
	}
}

func TestTableView(t *testing.T) {
	tbl := NewTable("Open Tenders", "ID", "TITLE", "STATUS")
	tbl.AddRow("p1", "Road maintenance", "published")
	tbl.AddRow("p2", "Medical supplies", "awarded")

	out := tbl.View()
	for _, want := range []string{"Open Tenders", "TITLE", "Road maintenance", "awarded"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableEmpty(t *testing.T) {
	tbl := NewTable("Bids", "ID", "AMOUNT")
	if out := tbl.View(); !strings.Contains(out, "No results.") {
		t.Fatalf("output = %q", out)
	}
}
