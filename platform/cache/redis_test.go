package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type redisURL string

func (u redisURL) GetRedisURL() string  { return string(u) }
func (u redisURL) IsRedisEnabled() bool { return u != "" }

func TestNewClientConnects(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := NewClient(context.Background(), redisURL("redis://"+server.Addr()+"/0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got, _ := server.Get("k"); got != "v" {
		t.Fatalf("expected value in server, got %q", got)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(context.Background(), redisURL("")); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestNewClientRejectsMalformedURL(t *testing.T) {
	if _, err := NewClient(context.Background(), redisURL("http://nope")); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
}
