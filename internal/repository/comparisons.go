package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

// ComparisonsRepository persists comparison results.
type ComparisonsRepository struct {
	pool *pgxpool.Pool
}

const comparisonColumns = `
    id,
    user1_profile,
    user2_profile,
    disagreements,
    quips_attached,
    created_at
`

// ComparisonListFilters selects comparisons to list.
type ComparisonListFilters struct {
	// User matches either side of the comparison.
	User   *string
	Limit  int
	Cursor *Cursor
}

// ComparisonListResult returns the paginated payload.
type ComparisonListResult struct {
	Items      []domain.Comparison
	NextCursor *string
}

// Create stores c. The ID must be set by the caller; CreatedAt is filled by
// the database when zero.
func (r *ComparisonsRepository) Create(ctx context.Context, c domain.Comparison) (domain.Comparison, error) {
	user1, err := json.Marshal(c.User1)
	if err != nil {
		return domain.Comparison{}, err
	}
	user2, err := json.Marshal(c.User2)
	if err != nil {
		return domain.Comparison{}, err
	}
	disagreements := c.Disagreements
	if disagreements == nil {
		disagreements = []domain.Disagreement{}
	}
	ds, err := json.Marshal(disagreements)
	if err != nil {
		return domain.Comparison{}, err
	}

	var createdAt any
	if !c.CreatedAt.IsZero() {
		createdAt = c.CreatedAt
	}
	query := fmt.Sprintf(`
        INSERT INTO comparisons (id, user1, user2, user1_profile, user2_profile, disagreements, quips_attached, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,COALESCE($8, now()))
        RETURNING %s
    `, comparisonColumns)

	row := r.pool.QueryRow(ctx, query, c.ID, c.User1.Username, c.User2.Username, user1, user2, ds, c.QuipsAttached, createdAt)
	return scanComparison(row)
}

// Get fetches a comparison by id.
func (r *ComparisonsRepository) Get(ctx context.Context, id string) (domain.Comparison, error) {
	query := fmt.Sprintf(`SELECT %s FROM comparisons WHERE id = $1`, comparisonColumns)
	c, err := scanComparison(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comparison{}, ErrNotFound
		}
		return domain.Comparison{}, err
	}
	return c, nil
}

// List returns comparisons newest first.
func (r *ComparisonsRepository) List(ctx context.Context, filters ComparisonListFilters) (ComparisonListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	} else if filters.Limit > 100 {
		filters.Limit = 100
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.User != nil && strings.TrimSpace(*filters.User) != "" {
		user := arg(strings.ToLower(strings.TrimSpace(*filters.User)))
		where = append(where, fmt.Sprintf("(user1 = %s OR user2 = %s)", user, user))
	}
	if filters.Cursor != nil {
		cursorCreated := arg(filters.Cursor.CreatedAt)
		cursorID := arg(filters.Cursor.ID)
		where = append(where, fmt.Sprintf("(created_at, id) < (%s, %s)", cursorCreated, cursorID))
	}

	var qb strings.Builder
	qb.WriteString("SELECT ")
	qb.WriteString(comparisonColumns)
	qb.WriteString(" FROM comparisons")
	if len(where) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(where, " AND "))
	}
	qb.WriteString(" ORDER BY created_at DESC, id DESC")
	qb.WriteString(fmt.Sprintf(" LIMIT %d", filters.Limit))

	rows, err := r.pool.Query(ctx, qb.String(), args...)
	if err != nil {
		return ComparisonListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.Comparison, 0)
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			return ComparisonListResult{}, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return ComparisonListResult{}, err
	}

	var next *string
	if len(items) == filters.Limit {
		last := items[len(items)-1]
		token, err := encodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		if err != nil {
			return ComparisonListResult{}, err
		}
		next = &token
	}
	return ComparisonListResult{Items: items, NextCursor: next}, nil
}

func scanComparison(row pgx.Row) (domain.Comparison, error) {
	var (
		c                   domain.Comparison
		user1, user2, dsRaw []byte
	)
	if err := row.Scan(&c.ID, &user1, &user2, &dsRaw, &c.QuipsAttached, &c.CreatedAt); err != nil {
		return domain.Comparison{}, err
	}
	if err := json.Unmarshal(user1, &c.User1); err != nil {
		return domain.Comparison{}, fmt.Errorf("decode user1: %w", err)
	}
	if err := json.Unmarshal(user2, &c.User2); err != nil {
		return domain.Comparison{}, fmt.Errorf("decode user2: %w", err)
	}
	if err := json.Unmarshal(dsRaw, &c.Disagreements); err != nil {
		return domain.Comparison{}, fmt.Errorf("decode disagreements: %w", err)
	}
	return c, nil
}
