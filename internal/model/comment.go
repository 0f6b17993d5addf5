package model

type PostCommentRequest struct {
	ChallengeID string `json:"challenge_id"`
	Content     string `json:"content"`
	ParentID    string `json:"parent_id"`
}

// PostCommentResponse holds Comment for a top-level comment and Reply otherwise.
type PostCommentResponse struct {
	Comment *TopLevelComment `json:"comment,omitempty"`
	Reply   *Reply           `json:"reply,omitempty"`
}

type ToggleLikeRequest struct {
	CommentID string `json:"comment_id"`
}

type ToggleLikeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

type TogglePinRequest struct {
	CommentID string `json:"comment_id"`
}

type TogglePinResponse struct {
	IsPinned bool `json:"is_pinned"`
}

type DeleteCommentRequest struct {
	CommentID string `json:"comment_id"`
}

type DeleteCommentResponse struct{}

type GetCommentsRequest struct {
	ChallengeID string `json:"challenge_id"`
}

type GetCommentsResponse struct {
	Comments []TopLevelComment `json:"comments"`
}
