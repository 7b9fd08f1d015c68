// Package mapstate is the Map State Index (SPEC_FULL.md §4.D): a dense
// per-map 2-D grid of occupants, rebuilt every tick, used for collision
// checks and combat targeting. Ported directly from
// original_source/rustyhack_server/src/game/map/state.rs — a sparse
// AOI-style hash (as the teacher's internal/world/aoi.go uses) cannot
// reproduce the y=0 sentinel-row short-circuit or the exact idempotent
// insert/remove semantics the testable properties in SPEC_FULL.md §8
// require, so this is a fresh dense structure rather than an adaptation
// of the teacher's AOI grid.
package mapstate

import "github.com/pbellchambers/rustyhack-server-go/internal/ecs"

// Occupant is one entity's record in a Map State Index cell.
type Occupant struct {
	EntityID   ecs.EntityID
	IsPlayer   bool
	Name       string
	ClientAddr string
	Online     bool
	Collidable bool
}

func (o Occupant) equal(other Occupant) bool {
	return o.EntityID == other.EntityID
}

// Index is the full per-map collection of MapStates, one per known map.
type Index struct {
	maps map[string]*grid
}

// grid is a dense [h][w][]Occupant structure, matching the Rust
// MapState = Vec<Vec<Vec<EntityType>>> shape exactly (including the
// occupant-per-cell fan-out instead of a single occupant slot, since
// two entities can coexist on one tile — e.g. a dropped item under a
// standing player).
type grid struct {
	cells [][]Occupant // flattened [y*w+x]
	w, h  int
}

func newGrid(w, h int) *grid {
	return &grid{cells: make([][]Occupant, w*h), w: w, h: h}
}

func (g *grid) idx(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return 0, false
	}
	return y*g.w + x, true
}

func NewIndex() *Index {
	return &Index{maps: make(map[string]*grid)}
}

// EnsureMap registers a map's dimensions so InsertAt/RemoveAt/CollisionAt
// can address it. Safe to call repeatedly; re-registering a known map
// with identical dimensions is a no-op (dimensions differing would drop
// the existing grid, since a map's shape never changes after load).
func (idx *Index) EnsureMap(mapName string, w, h int) {
	if g, ok := idx.maps[mapName]; ok && g.w == w && g.h == h {
		return
	}
	idx.maps[mapName] = newGrid(w, h)
}

// Clear empties every cell of every registered map, preparing for the
// per-tick Reset+Populate rebuild (§4.F).
func (idx *Index) Clear() {
	for _, g := range idx.maps {
		for i := range g.cells {
			if len(g.cells[i]) > 0 {
				g.cells[i] = g.cells[i][:0]
			}
		}
	}
}

// InsertAt adds an occupant record to a tile. Duplicate inserts are
// tolerated (and must be matched 1:1 by RemoveAt calls) per the ported
// Rust semantics.
func (idx *Index) InsertAt(mapName string, x, y int, occ Occupant) {
	g, ok := idx.maps[mapName]
	if !ok {
		return
	}
	i, ok := g.idx(x, y)
	if !ok {
		return
	}
	g.cells[i] = append(g.cells[i], occ)
}

// RemoveAt removes exactly one matching occupant (by EntityID) from a
// tile, if present. Idempotent: removing an occupant not present is a
// no-op, matching remove_entity_at's first-match-and-delete behaviour.
func (idx *Index) RemoveAt(mapName string, x, y int, occ Occupant) {
	g, ok := idx.maps[mapName]
	if !ok {
		return
	}
	i, ok := g.idx(x, y)
	if !ok {
		return
	}
	cell := g.cells[i]
	for j, c := range cell {
		if c.equal(occ) {
			g.cells[i] = append(cell[:j], cell[j+1:]...)
			return
		}
	}
}

// CollisionAt reports whether a collidable occupant blocks (x, y).
//
// Policy (kept verbatim from original_source, not "fixed" — see
// SPEC_FULL.md §9): y == 0 always reports no collision, a documented
// workaround for the row the Rust implementation's array indexing
// otherwise overflows on.
func (idx *Index) CollisionAt(mapName string, x, y int) (bool, *Occupant) {
	if y == 0 {
		return false, nil
	}
	g, ok := idx.maps[mapName]
	if !ok {
		return false, nil
	}
	i, ok := g.idx(x, y)
	if !ok {
		return false, nil
	}
	for _, c := range g.cells[i] {
		if !c.Collidable {
			continue
		}
		if c.IsPlayer && !c.Online {
			continue
		}
		cc := c
		return true, &cc
	}
	return false, nil
}

// OccupantsAt returns every occupant record on a tile, collidable or not —
// used by CombatCheck to find an adversary even when the mover itself
// isn't blocked (e.g. walking onto a non-collidable dropped item next to
// a monster).
func (idx *Index) OccupantsAt(mapName string, x, y int) []Occupant {
	g, ok := idx.maps[mapName]
	if !ok {
		return nil
	}
	i, ok := g.idx(x, y)
	if !ok {
		return nil
	}
	return g.cells[i]
}
