// mapexitconv converts a legacy exit-table text dump into the per-map
// assets/map_exits/<name>.json files the Map Registry loads at boot.
// Adapted from the teacher's cmd/portalconv, which performed the same
// text-dump-to-structured-asset conversion for dungeon portal rows —
// here repointed from YAML portal rows keyed by numeric map id to JSON
// exit rows keyed by map name, one file per source map.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type exit struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	DestMap string `json:"dest_map"`
	DestX   int    `json:"dest_x"`
	DestY   int    `json:"dest_y"`
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: mapexitconv <exit_table.txt> <assets/map_exits dir>")
		os.Exit(1)
	}

	inFile, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer inFile.Close()

	outDir := os.Args[2]
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Legacy row shape: srcMap srcX srcY -> destMap destX destY
	re := regexp.MustCompile(`^(\S+)\s+(-?\d+)\s+(-?\d+)\s*->\s*(\S+)\s+(-?\d+)\s+(-?\d+)`)

	byMap := make(map[string][]exit)
	scanner := bufio.NewScanner(inFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		srcMap := m[1]
		srcX, _ := strconv.Atoi(m[2])
		srcY, _ := strconv.Atoi(m[3])
		destMap := m[4]
		destX, _ := strconv.Atoi(m[5])
		destY, _ := strconv.Atoi(m[6])

		byMap[srcMap] = append(byMap[srcMap], exit{
			X: srcX, Y: srcY, DestMap: destMap, DestX: destX, DestY: destY,
		})
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	total := 0
	for mapName, exits := range byMap {
		sort.Slice(exits, func(i, j int) bool {
			if exits[i].X != exits[j].X {
				return exits[i].X < exits[j].X
			}
			return exits[i].Y < exits[j].Y
		})
		data, err := json.MarshalIndent(exits, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		path := filepath.Join(outDir, mapName+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		total += len(exits)
	}

	fmt.Printf("Wrote %d exit entries across %d map files to %s\n", total, len(byMap), outDir)
}
