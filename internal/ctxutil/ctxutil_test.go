package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestWithDBTimeout_RespectsShorterParent(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ctx, c2 := WithDBTimeout(parent)
	defer c2()
	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("deadline not set")
	}
	if time.Until(dl) > 50*time.Millisecond {
		t.Fatalf("deadline extended beyond parent: %v", time.Until(dl))
	}
}

func TestSetDBTimeout(t *testing.T) {
	prev := DefaultDBTimeout
	t.Cleanup(func() { DefaultDBTimeout = prev })

	SetDBTimeout(0)
	if DefaultDBTimeout != prev {
		t.Fatal("zero must keep the current timeout")
	}
	SetDBTimeout(2 * time.Second)
	if DefaultDBTimeout != 2*time.Second {
		t.Fatalf("timeout = %v", DefaultDBTimeout)
	}
}

func TestLogFields(t *testing.T) {
	if fs := LogFields(context.Background()); len(fs) != 0 {
		t.Fatalf("background context fields = %v", fs)
	}
	ctx := WithCommand(WithChatID(context.Background(), 42), "/stats")
	if v, ok := ChatID(ctx); !ok || v != 42 {
		t.Fatalf("chat id = %v %v", v, ok)
	}
	if v, ok := Command(ctx); !ok || v != "/stats" {
		t.Fatalf("command = %v %v", v, ok)
	}
	fs := LogFields(ctx)
	if len(fs) != 2 || fs[0].Key != "chat_id" || fs[0].Integer != 42 || fs[1].Key != "command" || fs[1].String != "/stats" {
		t.Fatalf("fields = %+v", fs)
	}
	if _, ok := Command(WithCommand(context.Background(), "")); ok {
		t.Fatal("empty command must be absent")
	}
}
