package models

import (
	"testing"
	"time"
)

func TestEventValidation(t *testing.T) {
	start := time.Date(2024, 6, 1, 6, 0, 0, 0, Moscow)
	valid := testEvent("e1", "Dozen 6am", start)
	if err := Validate.Struct(valid); err != nil {
		t.Errorf("valid event rejected: %v", err)
	}

	missingSummary := testEvent("e1", "", start)
	if err := Validate.Struct(missingSummary); err == nil {
		t.Error("event without summary accepted")
	}

	endBeforeStart := testEvent("e1", "Dozen 6am", start)
	endBeforeStart.End = start.Add(-time.Hour)
	if err := Validate.Struct(endBeforeStart); err == nil {
		t.Error("event ending before it starts accepted")
	}
}
