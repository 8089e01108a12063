package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"paydash/internal/core"
)

func TestPrintSummary(t *testing.T) {
	records := []core.PaymentRecord{
		{Username: "a", Date: core.NewDate(2024, 1, 1), DailyAmount: decimal.NewFromFloat(1.0)},
		{Username: "a", Date: core.NewDate(2024, 1, 2), DailyAmount: decimal.NewFromFloat(2.0)},
	}

	var buf bytes.Buffer
	printSummary(&buf, records)
	out := buf.String()

	for _, want := range []string{
		"Total Users:          1",
		"Total Amount:         3.0000",
		"Average Daily Amount: 1.5000",
		"2.0000",
		"Total: 3.0000 (2 records)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, nil)
	out := buf.String()

	if !strings.Contains(out, "Average Daily Amount: —") {
		t.Errorf("empty mean should be a dash:\n%s", out)
	}
	if !strings.Contains(out, "No records found") {
		t.Errorf("empty ranking should say so:\n%s", out)
	}
}
