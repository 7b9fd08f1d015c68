package persist

import (
	"context"
	"time"
)

// LeaderboardRow is one player's standing, upserted after every snapshot.
type LeaderboardRow struct {
	PlayerName string
	Level      int
	Exp        int64
	UpdatedAt  time.Time
}

// LeaderboardRepo is the optional Postgres sink SPEC_FULL.md §4.J
// describes: a supplemental read path for player rankings, never the
// source of truth (the JSON snapshot is). Adapted from the teacher's
// internal/persist/account_repo.go query/repo shape, repointed from
// account rows to leaderboard rows.
type LeaderboardRepo struct {
	db *DB
}

func NewLeaderboardRepo(db *DB) *LeaderboardRepo {
	return &LeaderboardRepo{db: db}
}

// Upsert writes one player's current level/exp, called once per player
// per snapshot run when the DB is configured.
func (r *LeaderboardRepo) Upsert(ctx context.Context, row LeaderboardRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO leaderboard (player_name, level, exp, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (player_name) DO UPDATE
		 SET level = EXCLUDED.level, exp = EXCLUDED.exp, updated_at = now()`,
		row.PlayerName, row.Level, row.Exp,
	)
	return err
}

// Top returns the n highest-exp players.
func (r *LeaderboardRepo) Top(ctx context.Context, n int) ([]LeaderboardRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT player_name, level, exp, updated_at FROM leaderboard ORDER BY exp DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.PlayerName, &row.Level, &row.Exp, &row.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
