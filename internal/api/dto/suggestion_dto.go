package dto

// CreateSuggestionRequest payload.
type CreateSuggestionRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

// SuggestionResponse is the canonical suggestion representation. The counts
// and the viewer flags always describe the state after the operation that
// produced the response.
type SuggestionResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	UserID          int64  `json:"user_id"`
	UserName        string `json:"user_name"`
	LikesCount      int64  `json:"likes_count"`
	DislikesCount   int64  `json:"dislikes_count"`
	UserHasLiked    bool   `json:"user_has_liked"`
	UserHasDisliked bool   `json:"user_has_disliked"`
}

// SuggestionListResponse wraps a page of suggestions.
type SuggestionListResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
	Total       int64                `json:"total"`
}
