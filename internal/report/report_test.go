package report

import (
	"math"
	"testing"

	"conto/internal/core"
)

func tx(date string, cents int64, tag string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{Date: d, Amount: core.Money{Cents: cents}, Tag: tag}
}

func TestComputeStatsClassification(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-01-05", 100000, ""),              // income
		tx("2024-01-10", -30000, core.TagSavings), // savings, not an expense
		tx("2024-01-12", -5000, ""),               // expense
	}

	stats := ComputeStats(txs, Total())
	s := stats.Summary
	if s.TotalIncome != 100000 {
		t.Fatalf("income = %d, want 100000", s.TotalIncome)
	}
	if s.TotalExpenses != 5000 {
		t.Fatalf("expenses = %d, want 5000", s.TotalExpenses)
	}
	if s.TotalSavings != 30000 {
		t.Fatalf("savings = %d, want 30000", s.TotalSavings)
	}
	if s.NetAmount != 65000 {
		t.Fatalf("net = %d, want 65000", s.NetAmount)
	}
	if math.Abs(s.SavingsRate-30.0) > 1e-9 {
		t.Fatalf("savings rate = %f, want 30", s.SavingsRate)
	}
}

func TestNetExcludesInvestmentsAndTransfers(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-01-05", 100000, ""),
		tx("2024-01-06", -20000, core.TagInvestments),
		tx("2024-01-07", -10000, core.TagTransfers),
	}
	s := ComputeStats(txs, Total()).Summary
	if s.TotalInvestments != 20000 || s.TotalTransfers != 10000 {
		t.Fatalf("tagged totals = %d/%d", s.TotalInvestments, s.TotalTransfers)
	}
	// Investments and transfers are allocations, not expenses.
	if s.NetAmount != 100000 {
		t.Fatalf("net = %d, want 100000", s.NetAmount)
	}
	if s.TotalExpenses != 0 {
		t.Fatalf("expenses = %d, want 0", s.TotalExpenses)
	}
}

func TestSavingsRateZeroIncome(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-01-10", -30000, core.TagSavings),
	}
	s := ComputeStats(txs, Total()).Summary
	if s.SavingsRate != 0 {
		t.Fatalf("savings rate with zero income = %f, want 0", s.SavingsRate)
	}
	if math.IsNaN(s.SavingsRate) || math.IsInf(s.SavingsRate, 0) {
		t.Fatal("savings rate must be a finite number")
	}
}

func TestPeriodBoundariesAreInclusive(t *testing.T) {
	p := Month(2024, 1)
	txs := []core.Transaction{
		tx("2023-12-31", -100, ""),
		tx("2024-01-01", -100, ""),
		tx("2024-01-31", -100, ""),
		tx("2024-02-01", -100, ""),
	}
	stats := ComputeStats(txs, p)
	if stats.Summary.TransactionCount != 2 {
		t.Fatalf("count = %d, want 2 (both month boundaries inclusive)", stats.Summary.TransactionCount)
	}
}

func TestMonthlyStatsOrdering(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-02-10", -100, ""),
		tx("2024-01-10", -100, ""),
		tx("2024-02-11", -100, ""),
	}
	months := MonthlyStats(txs)
	if len(months) != 2 {
		t.Fatalf("got %d months, want 2", len(months))
	}
	if months[0].Period != "2024-01" || months[1].Period != "2024-02" {
		t.Fatalf("order = %s, %s", months[0].Period, months[1].Period)
	}
	if months[1].Summary.TransactionCount != 2 {
		t.Fatalf("feb count = %d, want 2", months[1].Summary.TransactionCount)
	}
}

func TestCompareZeroPrevious(t *testing.T) {
	current := Summary{TotalIncome: 5000}
	previous := Summary{}
	c := Compare(current, previous)
	if c.Income.Change != 5000 {
		t.Fatalf("change = %d, want 5000", c.Income.Change)
	}
	if c.Income.ChangePercent != 0 {
		t.Fatalf("changePercent with zero previous = %f, want 0", c.Income.ChangePercent)
	}
}

func TestComparePercent(t *testing.T) {
	c := Compare(Summary{TotalExpenses: 150}, Summary{TotalExpenses: 100})
	if math.Abs(c.Expenses.ChangePercent-50.0) > 1e-9 {
		t.Fatalf("changePercent = %f, want 50", c.Expenses.ChangePercent)
	}
}
