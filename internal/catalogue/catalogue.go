// Package catalogue loads monster archetype templates and per-map spawn
// tables — SPEC_FULL.md §4.B. Grounded on
// original_source/rustyhack_server/src/game/monsters (monster template
// defaults) and its spawn-count bookkeeping used by the respawn pipeline.
package catalogue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// MonsterTemplate is the static data a monster archetype spawns with.
type MonsterTemplate struct {
	Archetype string          `json:"archetype"`
	Display   world.Display   `json:"display"`
	Stats     world.Stats     `json:"stats"`
	Inventory world.Inventory `json:"inventory"`
}

// SpawnTable lists the fixed spawn positions for one archetype on one map.
type SpawnTable struct {
	Archetype string       `json:"archetype"`
	Positions []world.Point `json:"positions"`
}

// Catalogue is the immutable-after-load set of monster templates and
// per-map spawn tables, plus the default living-count per (map, archetype)
// computed once at load — the target the respawn pipeline (§4.F step 14)
// tries to maintain.
type Catalogue struct {
	templates map[string]MonsterTemplate
	spawns    map[string][]SpawnTable // map name -> spawn tables

	// DefaultCounts[mapName][archetype] = number of configured spawn points.
	DefaultCounts map[string]map[string]int
}

func New() *Catalogue {
	return &Catalogue{
		templates:     make(map[string]MonsterTemplate),
		spawns:        make(map[string][]SpawnTable),
		DefaultCounts: make(map[string]map[string]int),
	}
}

// LoadAll reads assets/monsters/*.json (templates) and assets/spawns/*.json
// (one file per map, containing that map's SpawnTable list).
func (c *Catalogue) LoadAll(monstersDir, spawnsDir string) error {
	if err := c.loadTemplates(monstersDir); err != nil {
		return err
	}
	return c.loadSpawns(spawnsDir)
}

func (c *Catalogue) loadTemplates(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("catalogue: read monster directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("catalogue: read %s: %w", e.Name(), err)
		}
		var t MonsterTemplate
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("catalogue: parse %s: %w", e.Name(), err)
		}
		c.templates[t.Archetype] = t
	}
	return nil
}

func (c *Catalogue) loadSpawns(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("catalogue: read spawn directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		mapName := strings.TrimSuffix(e.Name(), ".json")
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("catalogue: read %s: %w", e.Name(), err)
		}
		var tables []SpawnTable
		if err := json.Unmarshal(data, &tables); err != nil {
			return fmt.Errorf("catalogue: parse %s: %w", e.Name(), err)
		}
		c.spawns[mapName] = tables

		counts := make(map[string]int, len(tables))
		for _, t := range tables {
			counts[t.Archetype] = len(t.Positions)
		}
		c.DefaultCounts[mapName] = counts
	}
	return nil
}

func (c *Catalogue) Template(archetype string) (MonsterTemplate, bool) {
	t, ok := c.templates[archetype]
	return t, ok
}

func (c *Catalogue) Archetypes() []string {
	out := make([]string, 0, len(c.templates))
	for a := range c.templates {
		out = append(out, a)
	}
	return out
}

// Positions returns the configured spawn points for an archetype on a map.
func (c *Catalogue) Positions(mapName, archetype string) []world.Point {
	for _, t := range c.spawns[mapName] {
		if t.Archetype == archetype {
			return t.Positions
		}
	}
	return nil
}

// Maps returns every map name that has a spawn table.
func (c *Catalogue) Maps() []string {
	out := make([]string, 0, len(c.spawns))
	for m := range c.spawns {
		out = append(out, m)
	}
	return out
}
