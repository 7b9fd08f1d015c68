package ecs

import "testing"

type position struct{ X, Y int }

func TestEntityGenerationInvalidatesStaleRef(t *testing.T) {
	pool := NewEntityPool()
	id := pool.Create()
	if !pool.Alive(id) {
		t.Fatalf("freshly created entity should be alive")
	}
	pool.Destroy(id)
	if pool.Alive(id) {
		t.Fatalf("destroyed entity's old id should no longer be alive")
	}

	reused := pool.Create()
	if reused.Index() != id.Index() {
		t.Fatalf("expected the freed index to be reused, got a new index")
	}
	if reused.Generation() == id.Generation() {
		t.Fatalf("reused index must bump generation so the old id stays invalid")
	}
	if pool.Alive(id) {
		t.Fatalf("original (lower-generation) id must remain dead after reuse")
	}
	if !pool.Alive(reused) {
		t.Fatalf("reused entity id should be alive")
	}
}

func TestWorldFlushDestroyQueueClearsStores(t *testing.T) {
	w := NewWorld()
	positions := NewStore[position]()
	w.Registry().Register(positions)

	id := w.CreateEntity()
	positions.Set(id, &position{X: 1, Y: 2})

	w.MarkForDestruction(id)
	if !positions.Has(id) {
		t.Fatalf("component should still be present before FlushDestroyQueue")
	}

	w.FlushDestroyQueue()
	if positions.Has(id) {
		t.Fatalf("FlushDestroyQueue should have removed the destroyed entity's component")
	}
	if w.Alive(id) {
		t.Fatalf("destroyed entity should no longer be alive")
	}
}

func TestCommandBufferAttachDeferredUntilFlush(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()

	applied := false
	w.Commands().Attach(func() { applied = true })
	if applied {
		t.Fatalf("Attach callback must not run before FlushDestroyQueue")
	}
	w.FlushDestroyQueue()
	if !applied {
		t.Fatalf("Attach callback should run during FlushDestroyQueue")
	}
	_ = id
}
