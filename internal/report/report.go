// Package report derives period statistics from the transaction
// collection. Nothing here is persisted: stats are recomputed from the
// live collection on every read.
package report

import (
	"fmt"
	"sort"

	"conto/internal/core"
)

// Period is an inclusive date range. A zero Start or End leaves that
// side unbounded; the Total period includes every transaction.
type Period struct {
	Label string
	Start core.Date
	End   core.Date
}

// Total is the unbounded period.
func Total() Period {
	return Period{Label: "total"}
}

// Month covers one calendar month.
func Month(year, month int) Period {
	start := core.NewDate(year, month, 1)
	end := core.NewDate(year, month+1, 1)
	end = core.Date{Time: end.AddDate(0, 0, -1)}
	return Period{
		Label: fmt.Sprintf("%04d-%02d", year, month),
		Start: start,
		End:   end,
	}
}

// Range covers [start, end] inclusive.
func Range(start, end core.Date) Period {
	return Period{
		Label: start.String() + ".." + end.String(),
		Start: start,
		End:   end,
	}
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(d core.Date) bool {
	if !p.Start.IsZero() && d.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && d.After(p.End) {
		return false
	}
	return true
}

// Summary holds the aggregated totals for one period. All money values
// are absolute cents except NetAmount, which may be negative.
type Summary struct {
	TotalIncome      int64   `json:"totalIncome"`
	TotalExpenses    int64   `json:"totalExpenses"`
	TotalSavings     int64   `json:"totalSavings"`
	TotalInvestments int64   `json:"totalInvestments"`
	TotalTransfers   int64   `json:"totalTransfers"`
	NetAmount        int64   `json:"netAmount"`
	SavingsRate      float64 `json:"savingsRate"`

	TransactionCount int `json:"transactionCount"`
	IncomeCount      int `json:"incomeCount"`
	ExpenseCount     int `json:"expenseCount"`
}

// PeriodStats is the derived report for one period.
type PeriodStats struct {
	Period       string             `json:"period"`
	Transactions []core.Transaction `json:"transactions"`
	Summary      Summary            `json:"summary"`
}

// ComputeStats partitions the collection into the period and aggregates.
//
// Flow-tagged transactions (Savings/Investments/Transfers) accumulate
// into their own totals by absolute value and stay out of the sign-based
// income/expense split. Net excludes investments and transfers: both are
// allocations of already-earned money, not expenses.
func ComputeStats(txs []core.Transaction, period Period) PeriodStats {
	stats := PeriodStats{
		Period:       period.Label,
		Transactions: []core.Transaction{},
	}

	for _, tx := range txs {
		if !period.Contains(tx.Date) {
			continue
		}
		stats.Transactions = append(stats.Transactions, tx)
		stats.Summary.TransactionCount++

		switch core.CanonicalFlowTag(tx.Tag) {
		case core.TagSavings:
			stats.Summary.TotalSavings += tx.Amount.Abs()
		case core.TagInvestments:
			stats.Summary.TotalInvestments += tx.Amount.Abs()
		case core.TagTransfers:
			stats.Summary.TotalTransfers += tx.Amount.Abs()
		default:
			if tx.Amount.Cents > 0 {
				stats.Summary.TotalIncome += tx.Amount.Cents
				stats.Summary.IncomeCount++
			} else if tx.Amount.Cents < 0 {
				stats.Summary.TotalExpenses += -tx.Amount.Cents
				stats.Summary.ExpenseCount++
			}
		}
	}

	s := &stats.Summary
	s.NetAmount = s.TotalIncome - s.TotalExpenses - s.TotalSavings
	if s.TotalIncome > 0 {
		s.SavingsRate = float64(s.TotalSavings) / float64(s.TotalIncome) * 100
	}
	return stats
}

// MonthlyStats groups the collection by calendar month, oldest first.
func MonthlyStats(txs []core.Transaction) []PeriodStats {
	months := make(map[string][]core.Transaction)
	for _, tx := range txs {
		key := tx.Date.Format("2006-01")
		months[key] = append(months[key], tx)
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]PeriodStats, 0, len(keys))
	for _, k := range keys {
		stats := ComputeStats(months[k], Total())
		stats.Period = k
		out = append(out, stats)
	}
	return out
}

// MetricChange is one metric of a period-over-period comparison.
// ChangePercent is 0 (not Inf or NaN) when the previous value is 0.
type MetricChange struct {
	Current       int64   `json:"current"`
	Change        int64   `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Comparison holds per-metric deltas between two period summaries.
type Comparison struct {
	Income      MetricChange `json:"income"`
	Expenses    MetricChange `json:"expenses"`
	Savings     MetricChange `json:"savings"`
	Investments MetricChange `json:"investments"`
	Transfers   MetricChange `json:"transfers"`
	Net         MetricChange `json:"net"`
}

// Compare computes current-vs-previous deltas for every summary metric.
func Compare(current, previous Summary) Comparison {
	return Comparison{
		Income:      compareMetric(current.TotalIncome, previous.TotalIncome),
		Expenses:    compareMetric(current.TotalExpenses, previous.TotalExpenses),
		Savings:     compareMetric(current.TotalSavings, previous.TotalSavings),
		Investments: compareMetric(current.TotalInvestments, previous.TotalInvestments),
		Transfers:   compareMetric(current.TotalTransfers, previous.TotalTransfers),
		Net:         compareMetric(current.NetAmount, previous.NetAmount),
	}
}

func compareMetric(current, previous int64) MetricChange {
	m := MetricChange{
		Current: current,
		Change:  current - previous,
	}
	if previous != 0 {
		m.ChangePercent = float64(m.Change) / float64(previous) * 100
	}
	return m
}
