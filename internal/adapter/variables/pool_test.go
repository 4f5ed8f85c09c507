package variables

import (
	"sync"
	"testing"
)

func TestObjectPool_AddObject(t *testing.T) {
	pool := NewObjectPool()

	id1 := pool.AddObject(1, "first")
	id2 := pool.AddObject(1, "second")

	if id1 <= 0 || id2 <= 0 {
		t.Errorf("ids must be positive, got %d and %d", id1, id2)
	}
	if id1 == id2 {
		t.Errorf("ids must be distinct, both were %d", id1)
	}

	if got := pool.ObjectByID(id1); got != "first" {
		t.Errorf("ObjectByID(%d) = %v, expected 'first'", id1, got)
	}
	if got := pool.ObjectByID(id2); got != "second" {
		t.Errorf("ObjectByID(%d) = %v, expected 'second'", id2, got)
	}
}

func TestObjectPool_UnknownID(t *testing.T) {
	pool := NewObjectPool()

	if got := pool.ObjectByID(42); got != nil {
		t.Errorf("expected nil for unknown id, got %v", got)
	}
	if got := pool.ObjectByID(0); got != nil {
		t.Errorf("expected nil for id 0, got %v", got)
	}
}

func TestObjectPool_RemoveObjectsByOwner(t *testing.T) {
	pool := NewObjectPool()

	id1 := pool.AddObject(1, "thread1-a")
	id2 := pool.AddObject(1, "thread1-b")
	id3 := pool.AddObject(2, "thread2")

	pool.RemoveObjectsByOwner(1)

	if got := pool.ObjectByID(id1); got != nil {
		t.Errorf("id %d should be recycled, got %v", id1, got)
	}
	if got := pool.ObjectByID(id2); got != nil {
		t.Errorf("id %d should be recycled, got %v", id2, got)
	}
	if got := pool.ObjectByID(id3); got != "thread2" {
		t.Errorf("other owner's id %d should survive, got %v", id3, got)
	}

	if pool.Size() != 1 {
		t.Errorf("expected 1 live handle, got %d", pool.Size())
	}
}

func TestObjectPool_RecyclesIDs(t *testing.T) {
	pool := NewObjectPool()

	id1 := pool.AddObject(1, "a")
	pool.RemoveObjectsByOwner(1)

	id2 := pool.AddObject(2, "b")
	if id2 != id1 {
		t.Errorf("expected recycled id %d, got %d", id1, id2)
	}
	if got := pool.ObjectByID(id2); got != "b" {
		t.Errorf("recycled id resolves to %v, expected 'b'", got)
	}
}

func TestObjectPool_Clear(t *testing.T) {
	pool := NewObjectPool()

	pool.AddObject(1, "a")
	pool.AddObject(2, "b")
	pool.Clear()

	if pool.Size() != 0 {
		t.Errorf("expected empty pool after clear, got %d handles", pool.Size())
	}
}

func TestObjectPool_ConcurrentAdd(t *testing.T) {
	pool := NewObjectPool()

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	ids := make([][]int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids[w] = append(ids[w], pool.AddObject(int64(w), i))
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, list := range ids {
		for _, id := range list {
			if id <= 0 {
				t.Fatalf("non-positive id %d", id)
			}
			if seen[id] {
				t.Fatalf("duplicate id %d", id)
			}
			seen[id] = true
		}
	}

	if pool.Size() != workers*perWorker {
		t.Errorf("expected %d handles, got %d", workers*perWorker, pool.Size())
	}
}
