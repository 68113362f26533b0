package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/suggestion-service/internal/domain"
)

// VoteRepository is the vote ledger: two (user_id, suggestion_id) edge sets
// mutated only through Toggle. Composite primary keys on the edge tables turn
// a lost insert race into a constraint error rather than a duplicate edge.
type VoteRepository interface {
	// Toggle flips the user's edge of the given kind inside a single
	// transaction and returns post-transition counts and flags.
	Toggle(ctx context.Context, userID, suggestionID int64, kind domain.VoteKind) (domain.VoteSummary, error)
	// Summary returns counts for the suggestion and the viewer's own flags.
	// A nil viewer always reads liked=disliked=false.
	Summary(ctx context.Context, suggestionID int64, viewerID *int64) (domain.VoteSummary, error)
}

type voteRepository struct {
	pool *pgxpool.Pool
}

// NewVoteRepository instantiates repository.
func NewVoteRepository(pool *pgxpool.Pool) VoteRepository {
	return &voteRepository{pool: pool}
}

func edgeTable(kind domain.VoteKind) string {
	if kind == domain.VoteKindDislike {
		return "suggestion_dislikes"
	}
	return "suggestion_likes"
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func edgeExists(ctx context.Context, q queryer, table string, userID, suggestionID int64) (bool, error) {
	query := fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE user_id=$1 AND suggestion_id=$2)`, table)
	var exists bool
	if err := q.QueryRow(ctx, query, userID, suggestionID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func edgeCount(ctx context.Context, q queryer, table string, suggestionID int64) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE suggestion_id=$1`, table)
	var count int64
	if err := q.QueryRow(ctx, query, suggestionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func currentState(ctx context.Context, q queryer, userID, suggestionID int64) (domain.VoteState, error) {
	liked, err := edgeExists(ctx, q, edgeTable(domain.VoteKindLike), userID, suggestionID)
	if err != nil {
		return domain.VoteStateNone, err
	}
	if liked {
		return domain.VoteStateLiked, nil
	}
	disliked, err := edgeExists(ctx, q, edgeTable(domain.VoteKindDislike), userID, suggestionID)
	if err != nil {
		return domain.VoteStateNone, err
	}
	if disliked {
		return domain.VoteStateDisliked, nil
	}
	return domain.VoteStateNone, nil
}

func (r *voteRepository) Toggle(ctx context.Context, userID, suggestionID int64, kind domain.VoteKind) (domain.VoteSummary, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.VoteSummary{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	state, err := currentState(ctx, tx, userID, suggestionID)
	if err != nil {
		return domain.VoteSummary{}, err
	}

	newState, ops := state.Toggle(kind)
	for _, op := range ops {
		table := edgeTable(op.Kind)
		var query string
		if op.Add {
			query = fmt.Sprintf(
				`INSERT INTO %s (user_id, suggestion_id) VALUES ($1, $2)`, table)
		} else {
			query = fmt.Sprintf(
				`DELETE FROM %s WHERE user_id=$1 AND suggestion_id=$2`, table)
		}
		if _, err := tx.Exec(ctx, query, userID, suggestionID); err != nil {
			return domain.VoteSummary{}, err
		}
	}

	summary, err := summarize(ctx, tx, suggestionID, newState)
	if err != nil {
		return domain.VoteSummary{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.VoteSummary{}, err
	}
	return summary, nil
}

func (r *voteRepository) Summary(ctx context.Context, suggestionID int64, viewerID *int64) (domain.VoteSummary, error) {
	state := domain.VoteStateNone
	if viewerID != nil {
		var err error
		state, err = currentState(ctx, r.pool, *viewerID, suggestionID)
		if err != nil {
			return domain.VoteSummary{}, err
		}
	}
	return summarize(ctx, r.pool, suggestionID, state)
}

func summarize(ctx context.Context, q queryer, suggestionID int64, state domain.VoteState) (domain.VoteSummary, error) {
	likes, err := edgeCount(ctx, q, edgeTable(domain.VoteKindLike), suggestionID)
	if err != nil {
		return domain.VoteSummary{}, err
	}
	dislikes, err := edgeCount(ctx, q, edgeTable(domain.VoteKindDislike), suggestionID)
	if err != nil {
		return domain.VoteSummary{}, err
	}
	return domain.VoteSummary{
		LikesCount:    likes,
		DislikesCount: dislikes,
		Liked:         state.Liked(),
		Disliked:      state.Disliked(),
	}, nil
}
