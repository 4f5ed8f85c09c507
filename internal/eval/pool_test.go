package eval

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsTasks(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			count.Add(1)
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	wg.Wait()

	if count.Load() != 20 {
		t.Errorf("expected 20 tasks run, got %d", count.Load())
	}
}

func TestPool_SubmitDoesNotBlock(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	block := make(chan struct{})
	if err := pool.Submit(func() { <-block }); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// The single worker is busy; further submits must still return
	// immediately.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			if err := pool.Submit(func() {}); err != nil {
				t.Errorf("Submit failed: %v", err)
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked with a busy worker")
	}
	close(block)
}

func TestPool_CloseDrainsQueue(t *testing.T) {
	pool := NewPool(1)

	var count atomic.Int64
	for i := 0; i < 5; i++ {
		if err := pool.Submit(func() { count.Add(1) }); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	pool.Close()

	if count.Load() != 5 {
		t.Errorf("expected queued tasks to run before close, got %d of 5", count.Load())
	}
}

func TestPool_SubmitAfterClose(t *testing.T) {
	pool := NewPool(1)
	pool.Close()

	if err := pool.Submit(func() {}); err != ErrPoolClosed {
		t.Errorf("Submit after close = %v, expected ErrPoolClosed", err)
	}
}
