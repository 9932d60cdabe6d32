package redis

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/vietddude/statusrelay/internal/core/domain"
)

// Set STATUSRELAY_TEST_REDIS to a disposable Redis URL to run these.
func setupLiveClient(t *testing.T) *Client {
	t.Helper()
	url := os.Getenv("STATUSRELAY_TEST_REDIS")
	if url == "" {
		t.Skip("Skipping live Redis test. Set STATUSRELAY_TEST_REDIS to run.")
	}

	client, err := NewClient(Config{URL: url, Prefix: "statusrelay-test"})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		_ = client.rdb.Del(ctx, client.key(messagesKey), client.key(blockHeightsKey("live-test"))).Err()
		_ = client.Close()
	})
	return client
}

func TestMessageRepo_Live(t *testing.T) {
	client := setupLiveClient(t)
	repo := NewMessageRepo(client)
	ctx := context.Background()
	_ = client.rdb.Del(ctx, client.key(messagesKey)).Err()

	for i := 0; i < 110; i++ {
		if err := repo.Push(ctx, domain.IntegrationMessage{ID: strconv.Itoa(i)}, 100); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}

	msgs, err := repo.List(ctx, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 100 || msgs[0].ID != "109" || msgs[99].ID != "10" {
		t.Errorf("unexpected list: len=%d", len(msgs))
	}
}

func TestBlockHistoryRepo_Live(t *testing.T) {
	client := setupLiveClient(t)
	repo := NewBlockHistoryRepo(client, "live-test")
	ctx := context.Background()
	_ = repo.Prune(ctx, 0)

	for h := uint64(10); h <= 14; h++ {
		if err := repo.Save(ctx, domain.BlockRecord{Height: h, Timestamp: "2024-01-01T00:00:00Z", Hash: "H"}); err != nil {
			t.Fatalf("save %d: %v", h, err)
		}
	}
	// same height replaces the previous record
	if err := repo.Save(ctx, domain.BlockRecord{Height: 14, Timestamp: "2024-01-01T00:00:06Z", Hash: "H2"}); err != nil {
		t.Fatalf("resave: %v", err)
	}

	latest, err := repo.Latest(ctx, 2)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(latest) != 2 || latest[0].Height != 13 || latest[1].Hash != "H2" {
		t.Errorf("unexpected latest: %+v", latest)
	}

	if err := repo.Prune(ctx, 3); err != nil {
		t.Fatalf("prune: %v", err)
	}
	all, _ := repo.Latest(ctx, 100)
	if len(all) != 3 || all[0].Height != 12 {
		t.Errorf("expected heights 12..14, got %+v", all)
	}
}
