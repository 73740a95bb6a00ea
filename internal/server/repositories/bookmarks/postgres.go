package bookmarks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/linkmark/internal/common"
	"github.com/dmitrijs2005/linkmark/internal/dbx"
	"github.com/dmitrijs2005/linkmark/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, b *models.Bookmark) (*models.Bookmark, error) {

	tags, err := json.Marshal(b.Tags)
	if err != nil {
		return nil, fmt.Errorf("tags encode error: %w", err)
	}

	query :=
		`INSERT INTO bookmarks (user_id, title, url, description, tags, pinned, is_archived)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		b.UserID, b.Title, b.URL, b.Description, tags, b.Pinned, b.IsArchived).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return b, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Bookmark, error) {
	query :=
		`SELECT id, user_id, title, url, description, tags, pinned, is_archived,
		        visit_count, last_visited_at, created_at, updated_at
		 FROM bookmarks
		 WHERE id = $1 AND user_id = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) Update(ctx context.Context, b *models.Bookmark) error {

	tags, err := json.Marshal(b.Tags)
	if err != nil {
		return fmt.Errorf("tags encode error: %w", err)
	}

	query :=
		`UPDATE bookmarks
		 SET title = $1, url = $2, description = $3, tags = $4, updated_at = now()
		 WHERE id = $5 AND user_id = $6
		 `

	res, err := r.db.ExecContext(ctx, query, b.Title, b.URL, b.Description, tags, b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query :=
		`DELETE FROM bookmarks
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) SetPinned(ctx context.Context, userID, id string, pinned bool) error {
	query :=
		`UPDATE bookmarks
		 SET pinned = $1, updated_at = now()
		 WHERE id = $2 AND user_id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, pinned, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) SetArchived(ctx context.Context, userID, id string, archived bool) error {
	query :=
		`UPDATE bookmarks
		 SET is_archived = $1, updated_at = now()
		 WHERE id = $2 AND user_id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, archived, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) RecordVisit(ctx context.Context, userID, id string) error {
	query :=
		`UPDATE bookmarks
		 SET visit_count = visit_count + 1, last_visited_at = now()
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) List(ctx context.Context, userID string, archived bool) ([]*models.Bookmark, error) {
	query :=
		`SELECT id, user_id, title, url, description, tags, pinned, is_archived,
		        visit_count, last_visited_at, created_at, updated_at
		 FROM bookmarks
		 WHERE user_id = $1 AND is_archived = $2
		 ORDER BY pinned DESC, created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, archived)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Bookmark
	for rows.Next() {
		b, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Bookmark, error) {
	b, err := r.scanRowInto(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PostgresRepository) scanRow(rows *sql.Rows) (*models.Bookmark, error) {
	return r.scanRowInto(rows)
}

func (r *PostgresRepository) scanRowInto(s rowScanner) (*models.Bookmark, error) {
	b := &models.Bookmark{}
	var tags []byte
	var lastVisited sql.NullTime

	err := s.Scan(&b.ID, &b.UserID, &b.Title, &b.URL, &b.Description, &tags,
		&b.Pinned, &b.IsArchived, &b.VisitCount, &lastVisited, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(tags, &b.Tags); err != nil {
		return nil, fmt.Errorf("tags decode error: %w", err)
	}
	if lastVisited.Valid {
		t := lastVisited.Time
		b.LastVisitedAt = &t
	}
	return b, nil
}

// requireRow maps "zero rows touched" to ErrorNotFound so callers cannot
// silently update someone else's bookmark.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
