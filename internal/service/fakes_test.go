package service

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/suggestion-service/internal/domain"
)

// In-memory repository fakes mirroring the Postgres implementations closely
// enough for service-level behavior: pgx.ErrNoRows on misses, edge sets keyed
// by (user, suggestion).

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = r.seq
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		u := user
		return &u, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if match(user) {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeSuggestionRepo struct {
	mu          sync.Mutex
	seq         int64
	suggestions map[int64]domain.Suggestion
	votes       *fakeVoteRepo
}

func newFakeSuggestionRepo(votes *fakeVoteRepo) *fakeSuggestionRepo {
	return &fakeSuggestionRepo{suggestions: make(map[int64]domain.Suggestion), votes: votes}
}

func (r *fakeSuggestionRepo) Create(_ context.Context, suggestion *domain.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	suggestion.ID = r.seq
	r.suggestions[suggestion.ID] = *suggestion
	return nil
}

func (r *fakeSuggestionRepo) GetByID(_ context.Context, id int64) (*domain.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.suggestions[id]; ok {
		out := s
		return &out, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeSuggestionRepo) List(_ context.Context, limit, offset int) ([]domain.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Suggestion
	for id := int64(1); id <= r.seq; id++ {
		if s, ok := r.suggestions[id]; ok {
			all = append(all, s)
		}
	}
	return page(all, limit, offset), nil
}

func (r *fakeSuggestionRepo) ListByAuthor(_ context.Context, userID int64, limit, offset int) ([]domain.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Suggestion
	for id := int64(1); id <= r.seq; id++ {
		if s, ok := r.suggestions[id]; ok && s.UserID == userID {
			all = append(all, s)
		}
	}
	return page(all, limit, offset), nil
}

func (r *fakeSuggestionRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.suggestions)), nil
}

func (r *fakeSuggestionRepo) CountByAuthor(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, s := range r.suggestions {
		if s.UserID == userID {
			total++
		}
	}
	return total, nil
}

func (r *fakeSuggestionRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.suggestions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.suggestions, id)
	if r.votes != nil {
		r.votes.removeEdgesFor(id)
	}
	return nil
}

func page(all []domain.Suggestion, limit, offset int) []domain.Suggestion {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

type votePair struct {
	userID       int64
	suggestionID int64
}

type fakeVoteRepo struct {
	mu       sync.Mutex
	likes    map[votePair]bool
	dislikes map[votePair]bool
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{likes: make(map[votePair]bool), dislikes: make(map[votePair]bool)}
}

func (r *fakeVoteRepo) state(p votePair) domain.VoteState {
	if r.likes[p] {
		return domain.VoteStateLiked
	}
	if r.dislikes[p] {
		return domain.VoteStateDisliked
	}
	return domain.VoteStateNone
}

func (r *fakeVoteRepo) edgeSet(kind domain.VoteKind) map[votePair]bool {
	if kind == domain.VoteKindDislike {
		return r.dislikes
	}
	return r.likes
}

func (r *fakeVoteRepo) Toggle(_ context.Context, userID, suggestionID int64, kind domain.VoteKind) (domain.VoteSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := votePair{userID: userID, suggestionID: suggestionID}
	newState, ops := r.state(p).Toggle(kind)
	for _, op := range ops {
		if op.Add {
			r.edgeSet(op.Kind)[p] = true
		} else {
			delete(r.edgeSet(op.Kind), p)
		}
	}
	return r.summarize(suggestionID, newState), nil
}

func (r *fakeVoteRepo) Summary(_ context.Context, suggestionID int64, viewerID *int64) (domain.VoteSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := domain.VoteStateNone
	if viewerID != nil {
		state = r.state(votePair{userID: *viewerID, suggestionID: suggestionID})
	}
	return r.summarize(suggestionID, state), nil
}

func (r *fakeVoteRepo) summarize(suggestionID int64, state domain.VoteState) domain.VoteSummary {
	var likes, dislikes int64
	for p := range r.likes {
		if p.suggestionID == suggestionID {
			likes++
		}
	}
	for p := range r.dislikes {
		if p.suggestionID == suggestionID {
			dislikes++
		}
	}
	return domain.VoteSummary{
		LikesCount:    likes,
		DislikesCount: dislikes,
		Liked:         state.Liked(),
		Disliked:      state.Disliked(),
	}
}

func (r *fakeVoteRepo) removeEdgesFor(suggestionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for p := range r.likes {
		if p.suggestionID == suggestionID {
			delete(r.likes, p)
		}
	}
	for p := range r.dislikes {
		if p.suggestionID == suggestionID {
			delete(r.dislikes, p)
		}
	}
}

func (r *fakeVoteRepo) edgeCountFor(suggestionID int64) (likes, dislikes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for p := range r.likes {
		if p.suggestionID == suggestionID {
			likes++
		}
	}
	for p := range r.dislikes {
		if p.suggestionID == suggestionID {
			dislikes++
		}
	}
	return likes, dislikes
}
