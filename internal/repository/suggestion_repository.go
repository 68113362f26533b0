package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/suggestion-service/internal/domain"
)

// SuggestionRepository encapsulates suggestion persistence. Suggestions are
// never updated in place; the only mutations are create and delete.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.Suggestion) error
	GetByID(ctx context.Context, id int64) (*domain.Suggestion, error)
	List(ctx context.Context, limit, offset int) ([]domain.Suggestion, error)
	ListByAuthor(ctx context.Context, userID int64, limit, offset int) ([]domain.Suggestion, error)
	CountAll(ctx context.Context) (int64, error)
	CountByAuthor(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type suggestionRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepository instantiates repository.
func NewSuggestionRepository(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepository{pool: pool}
}

const suggestionColumns = `
        s.id, s.title, s.description, s.user_id, u.username, s.created_at`

func (r *suggestionRepository) Create(ctx context.Context, suggestion *domain.Suggestion) error {
	const query = `
        INSERT INTO suggestions (title, description, user_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		suggestion.Title,
		suggestion.Description,
		suggestion.UserID,
	).Scan(&suggestion.ID, &suggestion.CreatedAt)
}

func (r *suggestionRepository) GetByID(ctx context.Context, id int64) (*domain.Suggestion, error) {
	const query = `
        SELECT` + suggestionColumns + `
        FROM suggestions s
        JOIN users u ON u.id = s.user_id
        WHERE s.id=$1`

	var s domain.Suggestion
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Title,
		&s.Description,
		&s.UserID,
		&s.AuthorName,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *suggestionRepository) List(ctx context.Context, limit, offset int) ([]domain.Suggestion, error) {
	const query = `
        SELECT` + suggestionColumns + `
        FROM suggestions s
        JOIN users u ON u.id = s.user_id
        ORDER BY s.id
        LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuggestions(rows)
}

func (r *suggestionRepository) ListByAuthor(ctx context.Context, userID int64, limit, offset int) ([]domain.Suggestion, error) {
	const query = `
        SELECT` + suggestionColumns + `
        FROM suggestions s
        JOIN users u ON u.id = s.user_id
        WHERE s.user_id=$1
        ORDER BY s.id
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuggestions(rows)
}

func (r *suggestionRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suggestions`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *suggestionRepository) CountByAuthor(ctx context.Context, userID int64) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM suggestions WHERE user_id=$1`, userID,
	).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Delete removes the suggestion and its vote edges in one transaction so no
// orphaned edge rows survive. Returns pgx.ErrNoRows when the id is unknown.
func (r *suggestionRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM suggestion_likes WHERE suggestion_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM suggestion_dislikes WHERE suggestion_id=$1`, id); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM suggestions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

func scanSuggestions(rows pgx.Rows) ([]domain.Suggestion, error) {
	var result []domain.Suggestion
	for rows.Next() {
		var s domain.Suggestion
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.Description,
			&s.UserID,
			&s.AuthorName,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
