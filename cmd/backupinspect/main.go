// backupinspect summarizes a world snapshot file without booting the
// server: player count, name/level/position listing, and checksum
// validity. In the reporting spirit of the teacher's cmd/sqlconv (an
// offline tool that inspects persisted state and prints a table), but
// pointed at this project's snapshot format instead of SQL dump rows.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/pbellchambers/rustyhack-server-go/internal/persist"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: backupinspect <snapshot.json>")
		os.Exit(1)
	}

	snap, ok, err := persist.Load(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "snapshot missing, unreadable, or checksum mismatch — treated as absent")
		os.Exit(1)
	}

	fmt.Printf("snapshot version %d, %d players\n\n", snap.Version, len(snap.Players))

	type row struct {
		name  string
		level int
		exp   int64
		mapName string
		x, y  int
	}
	rows := make([]row, 0, len(snap.Players))
	for key, pi := range snap.Players {
		r := row{name: pi.Name}
		if st, ok := snap.Stats[key]; ok {
			r.level, r.exp = st.Level, st.Exp
		}
		if pos, ok := snap.Position[key]; ok {
			r.mapName, r.x, r.y = pos.Map, pos.X, pos.Y
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].exp > rows[j].exp })

	fmt.Printf("%-20s %6s %10s %-16s\n", "name", "level", "exp", "location")
	for _, r := range rows {
		fmt.Printf("%-20s %6d %10d %-16s\n", r.name, r.level, r.exp, fmt.Sprintf("%s (%d,%d)", r.mapName, r.x, r.y))
	}
}
