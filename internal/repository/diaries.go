package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

// DiariesRepository stores point-in-time copies of fetched diaries.
type DiariesRepository struct {
	pool *pgxpool.Pool
}

// DiarySnapshot is one stored fetch.
type DiarySnapshot struct {
	ID        int64
	Layout    string
	Diary     domain.UserDiary
	CreatedAt time.Time
}

const snapshotColumns = `
    id,
    username,
    layout,
    name,
    profile_pic_url,
    entries,
    failed_pages,
    fetched_at,
    created_at
`

// Save inserts a snapshot of d fetched with the given layout.
func (r *DiariesRepository) Save(ctx context.Context, layout string, d domain.UserDiary) (DiarySnapshot, error) {
	entries, err := json.Marshal(d.Movies)
	if err != nil {
		return DiarySnapshot{}, fmt.Errorf("encode entries: %w", err)
	}
	failed := make([]int32, len(d.FailedPages))
	for i, p := range d.FailedPages {
		failed[i] = int32(p)
	}

	query := fmt.Sprintf(`
        INSERT INTO diary_snapshots (username, layout, name, profile_pic_url, entries, entry_count, failed_pages, fetched_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING %s
    `, snapshotColumns)

	row := r.pool.QueryRow(ctx, query, d.Username, layout, d.Name, d.ProfilePicURL, entries, len(d.Movies), failed, d.FetchedAt)
	return scanSnapshot(row)
}

// Latest returns the newest snapshot for username in layout.
func (r *DiariesRepository) Latest(ctx context.Context, username, layout string) (DiarySnapshot, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM diary_snapshots
        WHERE username = $1 AND layout = $2
        ORDER BY fetched_at DESC, id DESC
        LIMIT 1
    `, snapshotColumns)
	snap, err := scanSnapshot(r.pool.QueryRow(ctx, query, username, layout))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DiarySnapshot{}, ErrNotFound
		}
		return DiarySnapshot{}, err
	}
	return snap, nil
}

func scanSnapshot(row pgx.Row) (DiarySnapshot, error) {
	var (
		snap    DiarySnapshot
		entries []byte
		failed  []int32
	)
	err := row.Scan(
		&snap.ID,
		&snap.Diary.Username,
		&snap.Layout,
		&snap.Diary.Name,
		&snap.Diary.ProfilePicURL,
		&entries,
		&failed,
		&snap.Diary.FetchedAt,
		&snap.CreatedAt,
	)
	if err != nil {
		return DiarySnapshot{}, err
	}
	if err := json.Unmarshal(entries, &snap.Diary.Movies); err != nil {
		return DiarySnapshot{}, fmt.Errorf("decode entries: %w", err)
	}
	for _, p := range failed {
		snap.Diary.FailedPages = append(snap.Diary.FailedPages, int(p))
	}
	return snap, nil
}
