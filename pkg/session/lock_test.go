package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/Jembe/jembe-sub000"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(func(string) (*jembe.Client, error) { return jembe.New(), nil })
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("session-%d", i)
		if _, err := mgr.Open(sid); err != nil {
			t.Fatal(err)
		}
		_ = mgr.WithLock(ctx, sid, func(context.Context) error { return nil })
		_ = mgr.Close(ctx, sid)
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("%d locks remaining after close", n)
	}
}
