package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"paydash/internal/core"
)

// HeadlineMetrics are the three figures shown above the charts.
type HeadlineMetrics struct {
	Users   int
	Total   decimal.Decimal
	Mean    decimal.Decimal
	HasData bool
}

// CumulativeRow pairs a record with the running total of its user up to and including it.
type CumulativeRow struct {
	Index      int // position of the record in the input
	Record     core.PaymentRecord
	Cumulative decimal.Decimal
}

// UserSummary aggregates all records of one username.
type UserSummary struct {
	Username string
	Total    decimal.Decimal
	Mean     decimal.Decimal
	Max      decimal.Decimal
	Count    int
}

// Headline computes distinct users, the overall sum and the overall mean.
// The mean of zero records is zero and HasData is false.
func Headline(records []core.PaymentRecord) HeadlineMetrics {
	users := make(map[string]struct{})
	total := decimal.Zero
	for _, r := range records {
		users[r.Username] = struct{}{}
		total = total.Add(r.DailyAmount)
	}
	m := HeadlineMetrics{Users: len(users), Total: total, Mean: decimal.Zero}
	if len(records) > 0 {
		m.Mean = total.Div(decimal.NewFromInt(int64(len(records))))
		m.HasData = true
	}
	return m
}

// SortedByDate returns the input positions ordered by ascending date.
// Records on the same date keep their input order.
func SortedByDate(records []core.PaymentRecord) []int {
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return records[idx[a]].Date.Before(records[idx[b]].Date)
	})
	return idx
}

// Cumulative returns one row per record, ordered by date, where Cumulative is
// the running sum of DailyAmount within the record's username.
func Cumulative(records []core.PaymentRecord) []CumulativeRow {
	running := make(map[string]decimal.Decimal)
	rows := make([]CumulativeRow, 0, len(records))
	for _, i := range SortedByDate(records) {
		r := records[i]
		sum := running[r.Username].Add(r.DailyAmount)
		running[r.Username] = sum
		rows = append(rows, CumulativeRow{Index: i, Record: r, Cumulative: sum})
	}
	return rows
}

// Ranking groups records by username and orders the groups by total,
// highest first. Equal totals are ordered by username.
func Ranking(records []core.PaymentRecord) []UserSummary {
	byUser := make(map[string]*UserSummary)
	var order []string
	for _, r := range records {
		s, ok := byUser[r.Username]
		if !ok {
			s = &UserSummary{Username: r.Username, Total: decimal.Zero, Max: r.DailyAmount}
			byUser[r.Username] = s
			order = append(order, r.Username)
		}
		s.Total = s.Total.Add(r.DailyAmount)
		if r.DailyAmount.GreaterThan(s.Max) {
			s.Max = r.DailyAmount
		}
		s.Count++
	}

	out := make([]UserSummary, 0, len(order))
	for _, name := range order {
		s := byUser[name]
		s.Mean = s.Total.Div(decimal.NewFromInt(int64(s.Count)))
		out = append(out, *s)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if c := out[a].Total.Cmp(out[b].Total); c != 0 {
			return c > 0
		}
		return out[a].Username < out[b].Username
	})
	return out
}

// usernames returns the distinct usernames in order of first appearance.
func usernames(records []core.PaymentRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Username]; ok {
			continue
		}
		seen[r.Username] = struct{}{}
		out = append(out, r.Username)
	}
	return out
}
