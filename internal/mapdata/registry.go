// Package mapdata loads the fixed set of ASCII tile maps the server knows
// about at startup and answers tile queries for them — the Map Registry
// component of SPEC_FULL.md §4.A. Grounded on
// original_source/rustyhack_server/src/background_map (BackgroundMap,
// parsed once at boot and immutable afterwards) and its array padding
// helper (array_utils.rs::pad_all_rows).
package mapdata

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tile is a single map cell.
type Tile int

const (
	TileEmpty Tile = iota
	TileWall
	TileDoorClosed
	TileDoorOpen
	TileUpLadder
	TileDownLadder
	TileBoundary
)

func (t Tile) Collidable() bool {
	return t == TileWall || t == TileDoorClosed || t == TileBoundary
}

// Map is one parsed ASCII grid, rows padded to a common width.
type Map struct {
	Name string
	rows [][]Tile
	w, h int
}

func (m *Map) Width() int  { return m.w }
func (m *Map) Height() int { return m.h }

// TileAt returns the tile at (x, y). Out-of-bounds coordinates return
// TileBoundary rather than panicking, matching the registry-level
// TileAt's "unknown map → Boundary" contract.
func (m *Map) TileAt(x, y int) Tile {
	if x < 0 || y < 0 || y >= m.h || x >= len(m.rows[y]) {
		return TileBoundary
	}
	return m.rows[y][x]
}

// Exit is one tile-triggered map transition, loaded from
// assets/map_exits/<name>.json — generated offline by cmd/mapexitconv from
// a legacy exit-table dump, mirroring how cmd/portalconv fed the teacher's
// portal_list.yaml.
type Exit struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	DestMap string `json:"dest_map"`
	DestX   int    `json:"dest_x"`
	DestY   int    `json:"dest_y"`
}

// Registry is the immutable-after-load set of all known maps.
type Registry struct {
	maps  map[string]*Map
	exits map[string][]Exit // mapName -> exits on that map
}

func NewRegistry() *Registry {
	return &Registry{maps: make(map[string]*Map), exits: make(map[string][]Exit)}
}

// LoadAll parses every assets/maps/*.txt file in dir. Errors are returned,
// not fatal — the caller (cmd/rhserver) decides whether a load failure is
// fatal at boot.
func (r *Registry) LoadAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("mapdata: read map directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".txt")
		m, err := loadMap(name, filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("mapdata: load %s: %w", name, err)
		}
		r.maps[name] = m
	}
	return nil
}

func loadMap(name, path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]Tile
	maxW := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "%") {
			break // EOF marker
		}
		row := make([]Tile, 0, len(line))
		for _, ch := range line {
			row = append(row, charToTile(ch))
		}
		if len(row) > maxW {
			maxW = len(row)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// pad_all_rows: every row reaches maxW, padded with TileEmpty.
	for i := range rows {
		for len(rows[i]) < maxW {
			rows[i] = append(rows[i], TileEmpty)
		}
	}

	return &Map{Name: name, rows: rows, w: maxW, h: len(rows)}, nil
}

func charToTile(ch rune) Tile {
	switch ch {
	case '#':
		return TileBoundary
	case ' ':
		return TileEmpty
	case '|', '-', ',', '*':
		return TileWall
	case '+':
		return TileDoorClosed
	case '/':
		return TileDoorOpen
	case '^':
		return TileUpLadder
	case 'v':
		return TileDownLadder
	default:
		return TileEmpty
	}
}

// TileAt looks up a tile on a named map. Unknown maps and out-of-bounds
// coordinates both return TileBoundary rather than panicking — §7's
// invariant-violation tolerance policy.
func (r *Registry) TileAt(mapName string, x, y int) Tile {
	m, ok := r.maps[mapName]
	if !ok {
		return TileBoundary
	}
	return m.TileAt(x, y)
}

func (r *Registry) Get(mapName string) (*Map, bool) {
	m, ok := r.maps[mapName]
	return m, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.maps))
	for n := range r.maps {
		names = append(names, n)
	}
	return names
}

// LoadExits parses every assets/map_exits/<name>.json file in dir. A
// missing directory is not an error — exits are optional, the maps
// themselves still load and function without transitions.
func (r *Registry) LoadExits(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("mapdata: read map_exits directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("mapdata: read exits for %s: %w", name, err)
		}
		var exits []Exit
		if err := json.Unmarshal(data, &exits); err != nil {
			return fmt.Errorf("mapdata: parse exits for %s: %w", name, err)
		}
		r.exits[name] = exits
	}
	return nil
}

// ExitAt returns the exit at (x, y) on mapName, if any.
func (r *Registry) ExitAt(mapName string, x, y int) (Exit, bool) {
	for _, ex := range r.exits[mapName] {
		if ex.X == x && ex.Y == y {
			return ex, true
		}
	}
	return Exit{}, false
}
