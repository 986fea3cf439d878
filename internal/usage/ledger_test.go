package usage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"planroom/internal/models"
)

type memoryStore struct {
	mu      sync.Mutex
	records []models.UsageRecord
	err     error
}

func (m *memoryStore) SaveUsage(_ context.Context, r *models.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, *r)
	return nil
}

func (m *memoryStore) SumCostMicros(_ context.Context, room string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var total int64
	for _, r := range m.records {
		if room == "" || r.Room == room {
			total += r.CostMicros
		}
	}
	return total, nil
}

func TestCost(t *testing.T) {
	tests := []struct {
		prompt, response int
		want             string
	}{
		{0, 0, "0"},
		{1_000_000, 0, "0.075"},
		{0, 1_000_000, "0.3"},
		{1000, 200, "0.000135"},
		{1, 1, "0"},        // 0.000000375 四捨五入
		{7, 0, "0.000001"}, // 0.000000525
		{200_000, 16_666, "0.02"},
	}

	for _, tt := range tests {
		got := Cost(tt.prompt, tt.response)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Cost(%d, %d) = %s, want %s", tt.prompt, tt.response, got, tt.want)
		}
	}
}

func TestLedger_TotalSpentIsExactSum(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	ledger := NewLedger(store, ScopeGlobal, decimal.NewFromInt(10))

	calls := [][2]int{{1234, 567}, {98765, 4321}, {1, 1}, {50_000, 2_500}, {333, 777}}
	want := decimal.Zero
	for _, c := range calls {
		if _, err := ledger.Record(ctx, "R1", c[0], c[1]); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		want = want.Add(Cost(c[0], c[1]))
	}

	got, err := ledger.TotalSpent(ctx, "R1")
	if err != nil {
		t.Fatalf("TotalSpent() error = %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("TotalSpent() = %s, want %s", got, want)
	}
	if got.Exponent() < -CostPrecision {
		t.Errorf("TotalSpent() precision %d exceeds six decimals", got.Exponent())
	}
}

func TestLedger_Scope(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}

	global := NewLedger(store, ScopeGlobal, decimal.NewFromInt(10))
	perRoom := NewLedger(store, ScopeRoom, decimal.NewFromInt(10))

	if _, err := global.Record(ctx, "A", 1_000_000, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := global.Record(ctx, "B", 0, 1_000_000); err != nil {
		t.Fatal(err)
	}

	g, _ := global.TotalSpent(ctx, "A")
	if !g.Equal(decimal.RequireFromString("0.375")) {
		t.Errorf("global TotalSpent = %s, want 0.375", g)
	}
	r, _ := perRoom.TotalSpent(ctx, "A")
	if !r.Equal(decimal.RequireFromString("0.075")) {
		t.Errorf("room TotalSpent = %s, want 0.075", r)
	}
}

func TestLedger_CheckBudget(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{records: []models.UsageRecord{{Room: "R1", CostMicros: 9_990_000}}}
	ledger := NewLedger(store, ScopeGlobal, decimal.NewFromInt(10))

	if _, err := ledger.CheckBudget(ctx, "R1"); err != nil {
		t.Fatalf("expected budget available at 9.99, got %v", err)
	}

	if _, err := ledger.Record(ctx, "R1", 200_000, 16_666); err != nil {
		t.Fatal(err)
	}

	spent, err := ledger.CheckBudget(ctx, "R1")
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if !spent.Equal(decimal.RequireFromString("10.01")) {
		t.Errorf("spent = %s, want 10.01", spent)
	}
}

func TestLedger_StoreFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")
	ledger := NewLedger(&memoryStore{err: boom}, ScopeGlobal, decimal.NewFromInt(10))

	if _, err := ledger.Record(ctx, "R1", 1, 1); !errors.Is(err, boom) {
		t.Errorf("Record() error = %v, want wrapped %v", err, boom)
	}
	if _, err := ledger.CheckBudget(ctx, "R1"); !errors.Is(err, boom) {
		t.Errorf("CheckBudget() error = %v, want wrapped %v", err, boom)
	}
}

func TestParseCeiling(t *testing.T) {
	if d, err := ParseCeiling("10.00"); err != nil || !d.Equal(decimal.NewFromInt(10)) {
		t.Errorf("ParseCeiling(10.00) = %s, %v", d, err)
	}
	if _, err := ParseCeiling("ten"); err == nil {
		t.Error("expected error for non-numeric ceiling")
	}
	if _, err := ParseCeiling("-1"); err == nil {
		t.Error("expected error for negative ceiling")
	}
}
