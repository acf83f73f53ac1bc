package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"conto/internal/core"
	"conto/internal/detect"
	"conto/internal/store"
)

type memBackend struct {
	txs   []core.Transaction
	rules []core.CategoryRule
	prefs map[string]bool
	meta  *core.UploadMeta
}

func (m *memBackend) LoadTransactions(context.Context) ([]core.Transaction, error) {
	return append([]core.Transaction(nil), m.txs...), nil
}
func (m *memBackend) SaveTransactions(_ context.Context, txs []core.Transaction) error {
	m.txs = append([]core.Transaction(nil), txs...)
	return nil
}
func (m *memBackend) LoadRules(context.Context) ([]core.CategoryRule, error) { return m.rules, nil }
func (m *memBackend) SaveRules(_ context.Context, r []core.CategoryRule) error {
	m.rules = r
	return nil
}
func (m *memBackend) LoadPreferences(context.Context) (map[string]bool, error) { return m.prefs, nil }
func (m *memBackend) SavePreferences(_ context.Context, p map[string]bool) error {
	m.prefs = p
	return nil
}
func (m *memBackend) LoadUploadMeta(context.Context) (*core.UploadMeta, error) { return m.meta, nil }
func (m *memBackend) SaveUploadMeta(_ context.Context, meta core.UploadMeta) error {
	m.meta = &meta
	return nil
}
func (m *memBackend) Close() error { return nil }

type recordingPublisher struct {
	published []string
}

func (p *recordingPublisher) PublishTransactionSync(_ context.Context, id, _ string) error {
	p.published = append(p.published, id)
	return nil
}

const sampleCSV = `Date,Payee,Payment reference,Amount (EUR)
2024-01-15,REWE Berlin,Groceries week 3,-42.17
2024-01-16,Acme Corp,Salary January,2500.00
2024-01-20,Trade Republic,Monthly ETF savings plan,-500.00
`

func newImportService(backend *memBackend, pub SyncPublisher) (*ImportService, *store.Store) {
	st := store.New(backend)
	return NewImportService(st, backend, detect.Default(), pub), st
}

func TestImportFile(t *testing.T) {
	backend := &memBackend{}
	pub := &recordingPublisher{}
	svc, st := newImportService(backend, pub)

	report, err := svc.ImportFile(context.Background(), "export.csv", sampleCSV)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Added != 3 || report.Duplicates != 0 || report.Total != 3 {
		t.Fatalf("report = %+v", report)
	}
	if report.BatchID == "" {
		t.Fatal("batch id must be set")
	}
	if backend.meta == nil || backend.meta.TransactionCount != 3 {
		t.Fatalf("upload meta = %+v", backend.meta)
	}
	if len(pub.published) != 3 {
		t.Fatalf("published = %d, want 3", len(pub.published))
	}

	// The ETF savings plan row must come out flow-tagged.
	var etf core.Transaction
	for _, tx := range st.Transactions() {
		if strings.Contains(tx.Description, "ETF") {
			etf = tx
		}
	}
	if etf.Tag != core.TagInvestments {
		t.Fatalf("etf tag = %q, want %q", etf.Tag, core.TagInvestments)
	}
}

func TestImportFileTwiceAddsNothing(t *testing.T) {
	svc, st := newImportService(&memBackend{}, nil)

	if _, err := svc.ImportFile(context.Background(), "export.csv", sampleCSV); err != nil {
		t.Fatalf("first import: %v", err)
	}
	report, err := svc.ImportFile(context.Background(), "export.csv", sampleCSV)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if report.Added != 0 || report.Duplicates != 3 {
		t.Fatalf("second report = %+v", report)
	}
	if st.Len() != 3 {
		t.Fatalf("len = %d, want 3", st.Len())
	}
}

func TestImportAppliesCategoryRules(t *testing.T) {
	backend := &memBackend{
		rules: []core.CategoryRule{{Match: "rewe", Category: "Groceries"}},
	}
	svc, st := newImportService(backend, nil)

	csv := "Date,Description,Amount\n2024-01-15,REWE Berlin weekly shop,-42.17\n"
	if _, err := svc.ImportFile(context.Background(), "bank.csv", csv); err != nil {
		t.Fatalf("import: %v", err)
	}
	txs := st.Transactions()
	if len(txs) != 1 || txs[0].Category != "Groceries" {
		t.Fatalf("transactions = %+v", txs)
	}
}

func TestImportSkipsBadDateRows(t *testing.T) {
	svc, st := newImportService(&memBackend{}, nil)

	csv := "Date,Description,Amount\n2024-02-30,Impossible day,-10.00\n2024-01-15,Fine,-10.00\n"
	report, err := svc.ImportFile(context.Background(), "bank.csv", csv)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("skipped = %v", report.Skipped)
	}
	if report.Added != 1 || st.Len() != 1 {
		t.Fatalf("added = %d, len = %d", report.Added, st.Len())
	}
}

func TestImportAllRowsBadFails(t *testing.T) {
	svc, _ := newImportService(&memBackend{}, nil)

	csv := "Date,Description,Amount\nnot-a-date,Broken,-10.00\n"
	if _, err := svc.ImportFile(context.Background(), "bank.csv", csv); err == nil {
		t.Fatal("expected error when every row is skipped")
	}
}

func TestImportParseErrorAborts(t *testing.T) {
	svc, _ := newImportService(&memBackend{}, nil)

	_, err := svc.ImportFile(context.Background(), "bank.csv", "")
	if err == nil {
		t.Fatal("expected parse error for empty input")
	}
	var parseErr *core.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %T %v, want ParseError", err, err)
	}
}
