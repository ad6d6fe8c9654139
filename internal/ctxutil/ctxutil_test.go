package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestValues(t *testing.T) {
	ctx := WithOp(WithActor(WithRequestID(context.Background(), "req-1"), "admin"), "submit_day")

	if id, ok := RequestID(ctx); !ok || id != "req-1" {
		t.Fatalf("request id: %q %v", id, ok)
	}
	if a, ok := Actor(ctx); !ok || a != "admin" {
		t.Fatalf("actor: %q %v", a, ok)
	}
	if op, ok := Op(ctx); !ok || op != "submit_day" {
		t.Fatalf("op: %q %v", op, ok)
	}
	if _, ok := Actor(context.Background()); ok {
		t.Fatal("пустой контекст не должен содержать actor")
	}
}

func TestWithDBTimeout_RespectsShorterParent(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ctx, cancel2 := WithDBTimeout(parent)
	defer cancel2()

	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("ожидали дедлайн")
	}
	if time.Until(dl) > 100*time.Millisecond {
		t.Fatalf("дедлайн дальше родительского: %v", time.Until(dl))
	}
}
