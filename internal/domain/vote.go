package domain

// VoteKind selects one of the two edge sets.
type VoteKind string

const (
	VoteKindLike    VoteKind = "LIKE"
	VoteKindDislike VoteKind = "DISLIKE"
)

// VoteState is the relation between one user and one suggestion. At most one
// of the like/dislike edges exists for a pair at any time.
type VoteState int8

const (
	VoteStateNone VoteState = iota
	VoteStateLiked
	VoteStateDisliked
)

// EdgeOp is a single mutation against an edge set.
type EdgeOp struct {
	Kind VoteKind
	Add  bool
}

// Toggle flips the edge for the given kind and returns the resulting state
// together with the ledger mutations that realize it. Toggling the kind the
// user already voted removes that edge; toggling the opposite kind swaps the
// edges in one step, so mutual exclusion is preserved by construction.
func (s VoteState) Toggle(kind VoteKind) (VoteState, []EdgeOp) {
	switch kind {
	case VoteKindLike:
		switch s {
		case VoteStateLiked:
			return VoteStateNone, []EdgeOp{{Kind: VoteKindLike, Add: false}}
		case VoteStateDisliked:
			return VoteStateLiked, []EdgeOp{
				{Kind: VoteKindDislike, Add: false},
				{Kind: VoteKindLike, Add: true},
			}
		default:
			return VoteStateLiked, []EdgeOp{{Kind: VoteKindLike, Add: true}}
		}
	case VoteKindDislike:
		switch s {
		case VoteStateDisliked:
			return VoteStateNone, []EdgeOp{{Kind: VoteKindDislike, Add: false}}
		case VoteStateLiked:
			return VoteStateDisliked, []EdgeOp{
				{Kind: VoteKindLike, Add: false},
				{Kind: VoteKindDislike, Add: true},
			}
		default:
			return VoteStateDisliked, []EdgeOp{{Kind: VoteKindDislike, Add: true}}
		}
	}
	return s, nil
}

// Liked reports whether the state carries a like edge.
func (s VoteState) Liked() bool { return s == VoteStateLiked }

// Disliked reports whether the state carries a dislike edge.
func (s VoteState) Disliked() bool { return s == VoteStateDisliked }

// VoteSummary is the aggregate view of a suggestion's ledger for one viewer.
// Counts are always recomputed from edge-set cardinality, never cached.
type VoteSummary struct {
	LikesCount    int64
	DislikesCount int64
	Liked         bool
	Disliked      bool
}
