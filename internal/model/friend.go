package model

type SendFriendRequestRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type SendFriendRequestResponse struct {
	Request FriendRequest `json:"request"`
}

type AcceptFriendRequestRequest struct {
	RequestID string `json:"request_id"`
}

type AcceptFriendRequestResponse struct {
	Request FriendRequest `json:"request"`
}

type RejectFriendRequestRequest struct {
	RequestID string `json:"request_id"`
}

type RejectFriendRequestResponse struct {
	Request FriendRequest `json:"request"`
}

type CancelFriendRequestRequest struct {
	RequestID string `json:"request_id"`
}

type CancelFriendRequestResponse struct{}

type RemoveFriendRequest struct {
	UserID string `json:"user_id"`
}

type RemoveFriendResponse struct{}

type GetFriendsRequest struct {
	UserID string `json:"user_id"`
}

type GetFriendsResponse struct {
	Friends []User `json:"friends"`
}

type GetPendingFriendRequestsRequest struct{}

type GetPendingFriendRequestsResponse struct {
	Incoming []FriendRequest `json:"incoming"`
	Outgoing []FriendRequest `json:"outgoing"`
}

type GetFriendSuggestionsRequest struct {
	Limit int `json:"limit"`
}

type GetFriendSuggestionsResponse struct {
	Suggestions []FriendSuggestion `json:"suggestions"`
}

type GetRelationRequest struct {
	UserID string `json:"user_id"`
}

type GetRelationResponse struct {
	Relation  string `json:"relation"`
	RequestID string `json:"request_id,omitempty"`
}
