package variables

import (
	"sync"
)

// ObjectPool allocates opaque integer handles referencing live objects.
// Handles are grouped by owner (a debuggee thread) and recycled in bulk when
// the owner resumes. Ids are always > 0; 0 is reserved for "no handle".
//
// The pool is shared by every in-flight evaluate and variables operation of a
// session, so all methods are safe for concurrent use.
type ObjectPool struct {
	mu      sync.Mutex
	nextID  int
	free    []int
	objects map[int]poolEntry
	byOwner map[int64][]int
}

// poolEntry pairs a pooled object with its owner.
type poolEntry struct {
	owner int64
	obj   interface{}
}

// NewObjectPool creates an empty pool.
func NewObjectPool() *ObjectPool {
	return &ObjectPool{
		nextID:  1,
		objects: make(map[int]poolEntry),
		byOwner: make(map[int64][]int),
	}
}

// AddObject stores obj under a fresh or recycled id owned by ownerID and
// returns the id. The returned id is always > 0.
func (p *ObjectPool) AddObject(ownerID int64, obj interface{}) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	var id int
	if n := len(p.free); n > 0 {
		id = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		id = p.nextID
		p.nextID++
	}

	p.objects[id] = poolEntry{owner: ownerID, obj: obj}
	p.byOwner[ownerID] = append(p.byOwner[ownerID], id)
	return id
}

// ObjectByID returns the object stored under id, or nil if the id is unknown
// or has been recycled.
func (p *ObjectPool) ObjectByID(id int) interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.objects[id]
	if !ok {
		return nil
	}
	return entry.obj
}

// RemoveObjectsByOwner recycles every id owned by ownerID. Called when the
// owning thread resumes; the ids become available for reuse.
func (p *ObjectPool) RemoveObjectsByOwner(ownerID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := p.byOwner[ownerID]
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		delete(p.objects, id)
		p.free = append(p.free, id)
	}
	delete(p.byOwner, ownerID)
}

// Clear recycles every id in the pool.
func (p *ObjectPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id := range p.objects {
		delete(p.objects, id)
		p.free = append(p.free, id)
	}
	p.byOwner = make(map[int64][]int)
}

// Size returns the number of live handles.
func (p *ObjectPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.objects)
}
