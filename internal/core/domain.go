package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for display and as the primary input format.
const DateLayout = "2006-01-02"

// AmountPlaces is the number of decimal places shown for every monetary figure.
const AmountPlaces = 4

type (
	// Date is a calendar date in UTC; the time of day is always midnight.
	Date struct {
		time.Time
	}

	// PaymentRecord is one (username, date, amount) observation.
	PaymentRecord struct {
		Username    string
		Date        Date
		DailyAmount decimal.Decimal
	}
)

// Accepted input layouts for the date field, tried in order.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

var ErrInvalidDate = errors.New("invalid date")

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 date or timestamp and truncates it to its calendar date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// FormatAmount renders an amount with the fixed display precision.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}
