package models

import "testing"

func TestCloneReportSucceeded(t *testing.T) {
	report := NewCloneReport()
	if !report.Succeeded() {
		t.Error("empty report should be successful")
	}

	report.Outcomes["banner"] = EntityOutcome{Attempted: true, Succeeded: true, RowsCloned: 2}
	report.Outcomes["page"] = EntityOutcome{Attempted: true, Succeeded: true, RowsCloned: 5}
	if !report.Succeeded() {
		t.Error("report with only successes should be successful")
	}

	report.Outcomes["inventory"] = EntityOutcome{Attempted: true, Note: "insert rows: deadlock detected"}
	if report.Succeeded() {
		t.Error("report with a failed type should not be successful")
	}
}

func TestCloneReportTotalRows(t *testing.T) {
	report := NewCloneReport()
	report.Outcomes["banner"] = EntityOutcome{Attempted: true, Succeeded: true, RowsCloned: 2}
	report.Outcomes["page"] = EntityOutcome{Attempted: true, Succeeded: true, RowsCloned: 5}
	report.Outcomes["faq"] = EntityOutcome{Attempted: true}

	if got := report.TotalRows(); got != 7 {
		t.Errorf("TotalRows = %d, want 7", got)
	}
}
