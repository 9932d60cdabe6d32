package monitor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/statusrelay/internal/core/domain"
	"github.com/vietddude/statusrelay/internal/infra/storage/memory"
)

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	blocks []domain.BlockRecord
	err    error
	calls  int
}

func (s *stubSource) FetchLatestBlock(ctx context.Context) (domain.BlockRecord, error) {
	if s.err != nil {
		return domain.BlockRecord{}, s.err
	}
	b := s.blocks[s.calls]
	s.calls++
	return b, nil
}

type failingHistory struct {
	*memory.BlockHistoryRepo
	failPrune bool
	failSave  bool
}

func (f *failingHistory) Save(ctx context.Context, b domain.BlockRecord) error {
	if f.failSave {
		return errors.New("connection refused")
	}
	return f.BlockHistoryRepo.Save(ctx, b)
}

func (f *failingHistory) Prune(ctx context.Context, keep int) error {
	if f.failPrune {
		return errors.New("connection reset")
	}
	return f.BlockHistoryRepo.Prune(ctx, keep)
}

func block(height uint64, at time.Time) domain.BlockRecord {
	return domain.BlockRecord{Height: height, Timestamp: at.Format(time.RFC3339Nano), Hash: "H"}
}

func newTestChecker(source BlockSource, now time.Time) (*Checker, *memory.BlockHistoryRepo) {
	history := memory.NewBlockHistoryRepo(memory.NewMemoryStorage())
	c := NewChecker(source, history, "Athens Testnet", "https://explorer.example/block/")
	c.now = func() time.Time { return now }
	return c, history
}

func runChecks(t *testing.T, c *Checker, n int) domain.HealthCheck {
	t.Helper()
	var hc domain.HealthCheck
	for i := 0; i < n; i++ {
		var err error
		_, hc, err = c.Check(context.Background())
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
	}
	return hc
}

func TestCheck_FirstBlockIsHealthy(t *testing.T) {
	c, _ := newTestChecker(&stubSource{blocks: []domain.BlockRecord{block(100, baseTime)}}, baseTime)

	hc := runChecks(t, c, 1)
	if !hc.IsHealthy || len(hc.Alerts) != 0 {
		t.Errorf("expected healthy, got %+v", hc)
	}
}

func TestCheck_GapReportsMissingBlocks(t *testing.T) {
	source := &stubSource{blocks: []domain.BlockRecord{
		block(100, baseTime),
		block(102, baseTime.Add(5*time.Second)),
	}}
	c, _ := newTestChecker(source, baseTime.Add(5*time.Second))

	hc := runChecks(t, c, 2)
	if hc.IsHealthy || len(hc.Alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %+v", hc.Alerts)
	}
	info := hc.Alerts[0].Info
	if !strings.Contains(info, "Missing 1 blocks between heights 100 and 102") {
		t.Errorf("unexpected gap alert: %s", info)
	}
	if hc.Alerts[0].BlockLink != "https://explorer.example/block/102" {
		t.Errorf("unexpected link: %s", hc.Alerts[0].BlockLink)
	}
}

func TestCheck_SlowBlockThreshold(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		wantSlow bool
	}{
		{"on target", 6 * time.Second, false},
		{"at variance limit", 9 * time.Second, false},
		{"too slow", 10 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			second := baseTime.Add(tt.interval)
			source := &stubSource{blocks: []domain.BlockRecord{
				block(100, baseTime),
				block(101, second),
			}}
			c, _ := newTestChecker(source, second)

			hc := runChecks(t, c, 2)
			if tt.wantSlow {
				if len(hc.Alerts) != 1 || !strings.Contains(hc.Alerts[0].Info, "slower than expected") {
					t.Fatalf("expected slow alert, got %+v", hc.Alerts)
				}
				if !strings.Contains(hc.Alerts[0].Info, "10.0s (target: 6s ±3s)") {
					t.Errorf("unexpected slow alert text: %s", hc.Alerts[0].Info)
				}
				return
			}
			if !hc.IsHealthy {
				t.Errorf("expected healthy, got %+v", hc.Alerts)
			}
		})
	}
}

func TestCheck_StallThreshold(t *testing.T) {
	tests := []struct {
		name      string
		age       time.Duration
		wantStall bool
	}{
		{"30s old", 30 * time.Second, false},
		{"31s old", 31 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestChecker(&stubSource{blocks: []domain.BlockRecord{block(100, baseTime)}}, baseTime.Add(tt.age))

			hc := runChecks(t, c, 1)
			if !tt.wantStall {
				if !hc.IsHealthy {
					t.Errorf("expected healthy, got %+v", hc.Alerts)
				}
				return
			}
			if len(hc.Alerts) != 1 || !strings.Contains(hc.Alerts[0].Info, "No new blocks for 31.0 seconds") {
				t.Errorf("expected stall alert, got %+v", hc.Alerts)
			}
		})
	}
}

func TestCheck_FetchErrorMutatesNothing(t *testing.T) {
	c, history := newTestChecker(&stubSource{err: errors.New("503")}, baseTime)

	if _, _, err := c.Check(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
	got, _ := history.Latest(context.Background(), 10)
	if len(got) != 0 {
		t.Errorf("expected empty history, got %v", got)
	}
}

func TestCheck_HistoryErrorKeepsComputedAlerts(t *testing.T) {
	source := &stubSource{blocks: []domain.BlockRecord{
		block(100, baseTime),
		block(105, baseTime.Add(6*time.Second)),
	}}
	c, repo := newTestChecker(source, baseTime.Add(60*time.Second))
	history := &failingHistory{BlockHistoryRepo: repo}
	c.history = history

	runChecks(t, c, 1)
	history.failPrune = true
	hc := runChecks(t, c, 1)

	// stall, gap, then the prune failure
	if len(hc.Alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %+v", hc.Alerts)
	}
	if !strings.Contains(hc.Alerts[1].Info, "Missing 4 blocks") {
		t.Errorf("expected gap alert kept, got %s", hc.Alerts[1].Info)
	}
	last := hc.Alerts[2].Info
	if !strings.HasPrefix(last, "Error monitoring block height:") || !strings.HasSuffix(last, "Latest block: 105") {
		t.Errorf("unexpected error alert: %s", last)
	}
}

func TestCheck_SaveErrorBecomesAlert(t *testing.T) {
	c, repo := newTestChecker(&stubSource{blocks: []domain.BlockRecord{block(7, baseTime)}}, baseTime)
	c.history = &failingHistory{BlockHistoryRepo: repo, failSave: true}

	hc := runChecks(t, c, 1)
	if hc.IsHealthy || len(hc.Alerts) != 1 {
		t.Fatalf("expected one error alert, got %+v", hc.Alerts)
	}
	if !strings.Contains(hc.Alerts[0].Info, "connection refused") {
		t.Errorf("expected cause in alert, got %s", hc.Alerts[0].Info)
	}
}

func TestCheck_PrunesHistory(t *testing.T) {
	var blocks []domain.BlockRecord
	for i := 0; i < MaxStoredBlocks+20; i++ {
		blocks = append(blocks, block(uint64(i+1), baseTime.Add(time.Duration(i)*6*time.Second)))
	}
	c, history := newTestChecker(&stubSource{blocks: blocks}, baseTime)
	c.now = func() time.Time { return baseTime.Add(time.Duration(len(blocks)) * 6 * time.Second) }

	runChecks(t, c, len(blocks))

	got, _ := history.Latest(context.Background(), 1000)
	if len(got) != MaxStoredBlocks {
		t.Fatalf("expected %d blocks, got %d", MaxStoredBlocks, len(got))
	}
	if got[0].Height != 21 {
		t.Errorf("expected oldest height 21, got %d", got[0].Height)
	}
}

func TestCombine(t *testing.T) {
	if _, ok := Combine(nil); ok {
		t.Error("expected no alert for empty input")
	}

	combined, ok := Combine([]domain.NetworkAlert{
		{Network: "A", Info: "one", BlockLink: "l1"},
		{Network: "A", Info: "two", BlockLink: "l2"},
	})
	if !ok {
		t.Fatal("expected combined alert")
	}
	if combined.Info != "one\ntwo" || combined.BlockLink != "l1" || combined.Type != domain.AlertTypeNetwork {
		t.Errorf("unexpected combined alert: %+v", combined)
	}
}
