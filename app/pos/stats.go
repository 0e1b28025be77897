package pos

import (
	"strings"
	"time"

	"github.com/rotikasir/bakery-pos/models"
	"github.com/shopspring/decimal"
)

type Stats struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalTransactions int             `json:"total_transactions"`
}

// DayBounds returns the start of the calendar day containing t, in t's
// location, and the start of the following day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// TodayStats sums the transactions created on the calendar day of now,
// evaluated in now's location.
func TodayStats(transactions []models.Transaction, now time.Time) Stats {
	stats := Stats{TotalSales: decimal.Zero}
	for _, t := range transactions {
		if !SameDay(t.CreatedAt, now, now.Location()) {
			continue
		}
		stats.TotalSales = stats.TotalSales.Add(t.Total)
		stats.TotalTransactions++
	}
	return stats
}

// HistoryFilter narrows transaction history. An empty Query or a zero Date
// places no constraint. Date is compared by calendar day in its own location.
type HistoryFilter struct {
	Query string
	Date  time.Time
}

// FilterHistory keeps the transactions matching both the text query and the date.
func FilterHistory(transactions []models.Transaction, filter HistoryFilter) []models.Transaction {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]models.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if query != "" && !matchesQuery(t, query) {
			continue
		}
		if !filter.Date.IsZero() && !SameDay(t.CreatedAt, filter.Date, filter.Date.Location()) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesQuery(t models.Transaction, query string) bool {
	if strings.Contains(strings.ToLower(t.ID), query) {
		return true
	}
	for _, item := range t.Items {
		if strings.Contains(strings.ToLower(item.ProductName), query) {
			return true
		}
	}
	return false
}
