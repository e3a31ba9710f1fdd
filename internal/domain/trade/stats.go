package trade

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// StatusDayCount is one row of the grouped lead aggregation:
// how many leads captured on Date currently sit in Status, with
// their summed order totals and payout totals.
type StatusDayCount struct {
	Date   time.Time
	Status LeadStatus
	Count  int64
	Total  decimal.Decimal
	Payout decimal.Decimal
}

// LeadDailyStat is the per-day statistics line returned by the
// statistics endpoint and persisted by the nightly snapshot job.
type LeadDailyStat struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	Total       int64           `json:"total"`
	New         int64           `json:"new"`
	Callback    int64           `json:"callback"`
	Confirmed   int64           `json:"confirmed"`
	Shipped     int64           `json:"shipped"`
	Delivered   int64           `json:"delivered"`
	Paid        int64           `json:"paid"`
	Cancelled   int64           `json:"cancelled"`
	Returned    int64           `json:"returned"`
	Trash       int64           `json:"trash"`
	Approved    int64           `json:"approved"`
	ApproveRate float64         `json:"approve_rate"` // Percentage, 2 decimal places
	Revenue     decimal.Decimal `json:"revenue"`      // Sum of totals for delivered and paid leads
	PayoutPaid  decimal.Decimal `json:"payout_paid"`  // Sum of payouts for paid leads
}

// statDateLayout is the canonical day key format
const statDateLayout = "2006-01-02"

// BuildDailyStats folds grouped status rows into one stat line per day.
// Days are returned in ascending date order.
//
// Approve rate counts leads confirmed or beyond against all non-trash
// leads of the day:
//
//	rate = approved / (total - trash) * 100
//
// A day of nothing but trash has a rate of zero.
func BuildDailyStats(rows []StatusDayCount) []LeadDailyStat {
	byDay := make(map[string]*LeadDailyStat)

	for _, row := range rows {
		key := row.Date.Format(statDateLayout)
		stat, ok := byDay[key]
		if !ok {
			stat = newEmptyDailyStat(key)
			byDay[key] = stat
		}

		stat.Total += row.Count
		switch row.Status {
		case LeadStatusNew:
			stat.New += row.Count
		case LeadStatusCallback:
			stat.Callback += row.Count
		case LeadStatusConfirmed:
			stat.Confirmed += row.Count
		case LeadStatusShipped:
			stat.Shipped += row.Count
		case LeadStatusDelivered:
			stat.Delivered += row.Count
			stat.Revenue = stat.Revenue.Add(row.Total)
		case LeadStatusPaid:
			stat.Paid += row.Count
			stat.Revenue = stat.Revenue.Add(row.Total)
			stat.PayoutPaid = stat.PayoutPaid.Add(row.Payout)
		case LeadStatusCancelled:
			stat.Cancelled += row.Count
		case LeadStatusReturned:
			stat.Returned += row.Count
		case LeadStatusTrash:
			stat.Trash += row.Count
		}
		if row.Status.IsApproved() {
			stat.Approved += row.Count
		}
	}

	stats := make([]LeadDailyStat, 0, len(byDay))
	for _, stat := range byDay {
		stat.ApproveRate = approveRate(stat.Approved, stat.Total-stat.Trash)
		stats = append(stats, *stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Date < stats[j].Date
	})

	return stats
}

// FillMissingDays inserts zero-valued stat lines for every day in
// [from, to] that has no leads, so charts render contiguous ranges.
// Existing lines are kept as-is; the result stays in ascending order.
func FillMissingDays(stats []LeadDailyStat, from, to time.Time) []LeadDailyStat {
	if to.Before(from) {
		return stats
	}

	present := make(map[string]LeadDailyStat, len(stats))
	for _, stat := range stats {
		present[stat.Date] = stat
	}

	from = from.Truncate(24 * time.Hour)
	to = to.Truncate(24 * time.Hour)

	filled := make([]LeadDailyStat, 0, len(stats))
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(statDateLayout)
		if stat, ok := present[key]; ok {
			filled = append(filled, stat)
		} else {
			filled = append(filled, *newEmptyDailyStat(key))
		}
	}

	return filled
}

func newEmptyDailyStat(date string) *LeadDailyStat {
	return &LeadDailyStat{
		Date:       date,
		Revenue:    decimal.Zero,
		PayoutPaid: decimal.Zero,
	}
}

// approveRate returns approved/denominator as a percentage rounded to
// two decimal places, or zero when the denominator is not positive.
func approveRate(approved, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(approved).
		Div(decimal.NewFromInt(denominator)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	value, _ := rate.Float64()
	return value
}
