package mapstate

import (
	"testing"

	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
)

func TestCollisionAtRowZeroAlwaysClear(t *testing.T) {
	idx := NewIndex()
	idx.EnsureMap("home", 10, 10)
	idx.InsertAt("home", 3, 0, Occupant{EntityID: ecs.EntityID(1), Collidable: true})

	blocked, _ := idx.CollisionAt("home", 3, 0)
	if blocked {
		t.Fatalf("row 0 must never report a collision, even with a collidable occupant present")
	}
}

func TestInsertRemoveIdempotent(t *testing.T) {
	idx := NewIndex()
	idx.EnsureMap("home", 10, 10)
	occ := Occupant{EntityID: ecs.EntityID(7), Collidable: true}

	idx.InsertAt("home", 2, 2, occ)
	blocked, found := idx.CollisionAt("home", 2, 2)
	if !blocked || found == nil || found.EntityID != occ.EntityID {
		t.Fatalf("expected collision from inserted occupant, got blocked=%v found=%v", blocked, found)
	}

	idx.RemoveAt("home", 2, 2, occ)
	blocked, _ = idx.CollisionAt("home", 2, 2)
	if blocked {
		t.Fatalf("collision should clear once the occupant is removed")
	}

	// removing again is a no-op, not a panic
	idx.RemoveAt("home", 2, 2, occ)
}

func TestClearEmptiesAllMaps(t *testing.T) {
	idx := NewIndex()
	idx.EnsureMap("home", 5, 5)
	idx.InsertAt("home", 1, 1, Occupant{EntityID: ecs.EntityID(1), Collidable: true})
	idx.Clear()

	if occs := idx.OccupantsAt("home", 1, 1); len(occs) != 0 {
		t.Fatalf("expected no occupants after Clear, got %d", len(occs))
	}
}

func TestOccupantsAtIncludesNonCollidable(t *testing.T) {
	idx := NewIndex()
	idx.EnsureMap("home", 5, 5)
	idx.InsertAt("home", 1, 1, Occupant{EntityID: ecs.EntityID(1), Collidable: false})

	occs := idx.OccupantsAt("home", 1, 1)
	if len(occs) != 1 {
		t.Fatalf("expected 1 occupant, got %d", len(occs))
	}
	if blocked, _ := idx.CollisionAt("home", 1, 1); blocked {
		t.Fatalf("non-collidable occupant must not block movement")
	}
}
