package exchange

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	rates []*Rate
	clock time.Time
}

func (f *fakeRepo) Insert(_ context.Context, r *Rate) error {
	f.clock = f.clock.Add(time.Second)
	r.CreatedAt = f.clock
	cp := *r
	f.rates = append(f.rates, &cp)
	return nil
}

func (f *fakeRepo) sorted(pair Pair, activeOnly bool) []*Rate {
	var out []*Rate
	for _, r := range f.rates {
		if r.FromCurrency == pair.From && r.ToCurrency == pair.To && (!activeOnly || r.IsActive) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EffectiveDate.Equal(out[j].EffectiveDate) {
			return out[i].EffectiveDate.After(out[j].EffectiveDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (f *fakeRepo) Current(_ context.Context, pair Pair) (*Rate, error) {
	rs := f.sorted(pair, true)
	if len(rs) == 0 {
		return nil, apperr.NotFound("exchange rate not found")
	}
	return rs[0], nil
}

func (f *fakeRepo) History(_ context.Context, pair Pair, limit int) ([]*Rate, error) {
	rs := f.sorted(pair, false)
	if len(rs) > limit {
		rs = rs[:limit]
	}
	return rs, nil
}

func newTestService() (*service, *fakeRepo) {
	repo := &fakeRepo{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := &service{repo: repo, now: func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }}
	return svc, repo
}

func TestRecordRateRejectsNonPositive(t *testing.T) {
	svc, repo := newTestService()
	for _, r := range []string{"0", "-1.5"} {
		_, err := svc.RecordRate(context.Background(), RecordRateRequest{Rate: decimal.RequireFromString(r)})
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("rate %s: expected validation error, got %v", r, err)
		}
	}
	if len(repo.rates) != 0 {
		t.Fatal("rejected rates must not be stored")
	}
}

func TestRecordRateDefaults(t *testing.T) {
	svc, _ := newTestService()
	rate, err := svc.RecordRate(context.Background(), RecordRateRequest{Rate: decimal.RequireFromString("17.50")})
	if err != nil {
		t.Fatal(err)
	}
	if rate.FromCurrency != "USD" || rate.ToCurrency != "MXN" {
		t.Errorf("pair = %s/%s", rate.FromCurrency, rate.ToCurrency)
	}
	if rate.EffectiveDate != types.NewDate(2024, time.June, 1) {
		t.Errorf("effective date = %s", rate.EffectiveDate)
	}
	if !rate.IsActive {
		t.Error("new rates are active")
	}
}

func TestCurrentRateFollowsNewestEffectiveDate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CurrentRate(ctx, USDMXN); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("empty store: expected not found, got %v", err)
	}

	mustRecord(t, svc, "17.50", types.NewDate(2024, time.May, 1))
	mustRecord(t, svc, "18.10", types.NewDate(2024, time.May, 20))
	// Older effective date recorded later must not win.
	mustRecord(t, svc, "16.90", types.NewDate(2024, time.April, 1))

	cur, err := svc.CurrentRate(ctx, USDMXN)
	if err != nil {
		t.Fatal(err)
	}
	if !cur.Rate.Equal(decimal.RequireFromString("18.10")) {
		t.Fatalf("current = %s, want 18.10", cur.Rate)
	}

	history, err := svc.History(ctx, USDMXN, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if !history[1].Rate.Equal(decimal.RequireFromString("17.50")) {
		t.Fatalf("older rate must remain retrievable, got %s", history[1].Rate)
	}
}

func TestCurrentRateSameDayLatestInsertWins(t *testing.T) {
	svc, _ := newTestService()
	day := types.NewDate(2024, time.May, 1)
	mustRecord(t, svc, "17.00", day)
	mustRecord(t, svc, "17.25", day)

	cur, err := svc.CurrentRate(context.Background(), USDMXN)
	if err != nil {
		t.Fatal(err)
	}
	if !cur.Rate.Equal(decimal.RequireFromString("17.25")) {
		t.Fatalf("current = %s, want 17.25", cur.Rate)
	}
}

func TestHistoryLimit(t *testing.T) {
	svc, _ := newTestService()
	for i := 1; i <= 5; i++ {
		mustRecord(t, svc, "17", types.NewDate(2024, time.January, i))
	}
	got, err := svc.History(context.Background(), USDMXN, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].EffectiveDate != types.NewDate(2024, time.January, 5) {
		t.Fatalf("unexpected page %v", got)
	}
	if _, err := svc.History(context.Background(), USDMXN, -1); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("negative limit: %v", err)
	}
}

func TestParsePair(t *testing.T) {
	if _, err := ParsePair("EUR", ""); err == nil {
		t.Fatal("EUR is not supported")
	}
	if _, err := ParsePair("MXN", "MXN"); err == nil {
		t.Fatal("identical currencies must be rejected")
	}
	p, err := ParsePair("mxn", "usd")
	if err != nil || p.From != "MXN" || p.To != "USD" {
		t.Fatalf("got %v, %v", p, err)
	}
}

func mustRecord(t *testing.T, svc Service, rate string, d types.Date) {
	t.Helper()
	if _, err := svc.RecordRate(context.Background(), RecordRateRequest{Rate: decimal.RequireFromString(rate), EffectiveDate: d}); err != nil {
		t.Fatal(err)
	}
}
