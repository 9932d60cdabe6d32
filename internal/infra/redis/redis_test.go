package redis

import (
	"encoding/json"
	"testing"

	"github.com/vietddude/statusrelay/internal/core/domain"
)

func TestNamespacedKey(t *testing.T) {
	if got := namespacedKey("zetalert", "messages"); got != "zetalert:messages" {
		t.Errorf("expected zetalert:messages, got %s", got)
	}
	if got := namespacedKey("", "messages"); got != "messages" {
		t.Errorf("expected bare key, got %s", got)
	}
	if got := blockHeightsKey("Athens Testnet"); got != "block_heights:Athens Testnet" {
		t.Errorf("unexpected block key %s", got)
	}
}

func TestClientOptions_DisablesRetries(t *testing.T) {
	opts, err := clientOptions(Config{URL: "redis://localhost:6379/2", Password: "s3cret"})
	if err != nil {
		t.Fatalf("clientOptions failed: %v", err)
	}
	if opts.MaxRetries != -1 {
		t.Errorf("expected retries disabled (-1), got %d", opts.MaxRetries)
	}
	if opts.DB != 2 {
		t.Errorf("expected db 2, got %d", opts.DB)
	}
	if opts.Password != "s3cret" {
		t.Errorf("expected password override, got %q", opts.Password)
	}

	if _, err := clientOptions(Config{URL: "not-a-url"}); err == nil {
		t.Error("expected error for bad URL")
	}
}

func TestBlockMember_RoundTripKeepsHeightInScore(t *testing.T) {
	in := domain.BlockRecord{Height: 4242, Timestamp: "2024-01-01T00:00:06Z", Hash: "0xabc"}

	member, err := encodeBlockMember(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := decodeBlockMember(member, float64(in.Height))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Errorf("expected %+v, got %+v", in, out)
	}

	if _, err := decodeBlockMember("not json", 1); err == nil {
		t.Error("expected error for malformed member")
	}
}

func TestDecodeMessages_SkipsMalformed(t *testing.T) {
	good, _ := json.Marshal(domain.IntegrationMessage{ID: "1", Platform: domain.PlatformSlack})
	msgs := decodeMessages([]string{string(good), "{broken"})

	if len(msgs) != 1 || msgs[0].ID != "1" {
		t.Errorf("expected only the valid message, got %+v", msgs)
	}
}
