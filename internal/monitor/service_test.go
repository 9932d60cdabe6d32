package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/statusrelay/internal/core/domain"
	"github.com/vietddude/statusrelay/internal/infra/storage/memory"
	"github.com/vietddude/statusrelay/internal/messages"
	"github.com/vietddude/statusrelay/internal/notify"
)

type stubBroadcaster struct {
	events []notify.Event
	sent   []domain.Platform
	err    error
}

func (b *stubBroadcaster) SendAll(ctx context.Context, ev notify.Event) ([]domain.Platform, error) {
	b.events = append(b.events, ev)
	if b.err != nil {
		return nil, b.err
	}
	return b.sent, nil
}

func newTestService(source BlockSource, now time.Time, relay Broadcaster) (*Service, *messages.Store) {
	c, _ := newTestChecker(source, now)
	store := messages.NewStore(memory.NewMessageRepo(memory.NewMemoryStorage()))
	return NewService(c, relay, store), store
}

func TestService_HealthyRunDoesNotRelay(t *testing.T) {
	relay := &stubBroadcaster{sent: domain.Platforms}
	svc, store := newTestService(&stubSource{blocks: []domain.BlockRecord{block(1, baseTime)}}, baseTime, relay)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.HealthCheck.IsHealthy || res.LatestBlock.Height != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(relay.events) != 0 {
		t.Errorf("expected no relay, got %d events", len(relay.events))
	}
	if n := len(store.GetRecentMessages(context.Background())); n != 0 {
		t.Errorf("expected no recorded messages, got %d", n)
	}
}

func TestService_UnhealthyRunRelaysCombinedAlert(t *testing.T) {
	relay := &stubBroadcaster{sent: domain.Platforms}
	source := &stubSource{blocks: []domain.BlockRecord{block(10, baseTime)}}
	svc, store := newTestService(source, baseTime.Add(time.Minute), relay)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HealthCheck.IsHealthy {
		t.Fatal("expected unhealthy result")
	}
	if len(relay.events) != 1 {
		t.Fatalf("expected one relayed event, got %d", len(relay.events))
	}
	if _, ok := relay.events[0].(notify.TextEvent); !ok {
		t.Errorf("expected text event, got %T", relay.events[0])
	}

	msgs := store.GetRecentMessages(context.Background())
	if len(msgs) != 2 {
		t.Fatalf("expected one message per platform, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Source != domain.SourceAutomatic || m.Trigger == nil || m.Trigger.Type != domain.TriggerNetworkAlert {
			t.Errorf("unexpected recorded message: %+v", m)
		}
	}
}

func TestService_RelayFailure(t *testing.T) {
	relay := &stubBroadcaster{err: errors.New("discord: http 500")}
	svc, store := newTestService(&stubSource{blocks: []domain.BlockRecord{block(10, baseTime)}}, baseTime.Add(time.Minute), relay)

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected relay error")
	}
	if n := len(store.GetRecentMessages(context.Background())); n != 0 {
		t.Errorf("expected nothing recorded on failure, got %d", n)
	}
}

func TestService_NoPlatformsIsNotAnError(t *testing.T) {
	relay := &stubBroadcaster{err: notify.ErrNoPlatforms}
	svc, _ := newTestService(&stubSource{blocks: []domain.BlockRecord{block(10, baseTime)}}, baseTime.Add(time.Minute), relay)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HealthCheck.IsHealthy {
		t.Error("expected unhealthy result to be reported")
	}
}

func TestService_FetchFailure(t *testing.T) {
	relay := &stubBroadcaster{}
	svc, _ := newTestService(&stubSource{err: errors.New("timeout")}, baseTime, relay)

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(relay.events) != 0 {
		t.Error("expected no relay on fetch failure")
	}
}

func TestScheduler_DisabledReturnsImmediately(t *testing.T) {
	done := make(chan struct{})
	go func() {
		NewScheduler(nil, 0).Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled scheduler did not return")
	}
}

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	relay := &stubBroadcaster{}
	var blocks []domain.BlockRecord
	for i := 0; i < 1000; i++ {
		blocks = append(blocks, block(uint64(i+1), baseTime))
	}
	source := &stubSource{blocks: blocks}
	svc, _ := newTestService(source, baseTime, relay)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewScheduler(svc, 10*time.Millisecond).Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	if source.calls == 0 {
		t.Error("expected at least one check")
	}
}
