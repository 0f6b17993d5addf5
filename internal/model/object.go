package model

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
}

type FriendRequest struct {
	ID          string `json:"id"`
	Sender      User   `json:"sender"`
	Recipient   User   `json:"recipient"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	CreatedAt   string `json:"created_at"`
	RespondedAt string `json:"responded_at,omitempty"`
}

type FriendSuggestion struct {
	User          User `json:"user"`
	MutualFriends int  `json:"mutual_friends"`
}

type ChallengeStats struct {
	ParticipantCount int     `json:"participant_count"`
	CompletedCount   int     `json:"completed_count"`
	AverageProgress  float64 `json:"average_progress"`
}

type Challenge struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	DurationDays int            `json:"duration_days"`
	PointsReward int            `json:"points_reward"`
	Difficulty   string         `json:"difficulty"`
	Category     string         `json:"category"`
	CreatedBy    string         `json:"created_by"`
	IsPublic     bool           `json:"is_public"`
	Tags         []string       `json:"tags"`
	CreatedAt    string         `json:"created_at"`
	Stats        ChallengeStats `json:"stats"`
}

type Participation struct {
	ID            string  `json:"id"`
	ChallengeID   string  `json:"challenge_id"`
	UserID        string  `json:"user_id"`
	Progress      float64 `json:"progress"`
	Status        string  `json:"status"`
	StartedAt     string  `json:"started_at"`
	CompletedAt   string  `json:"completed_at,omitempty"`
	LastCheckIn   string  `json:"last_check_in,omitempty"`
	CheckInStreak int     `json:"check_in_streak"`
	LongestStreak int     `json:"longest_streak"`
	CheckInCount  int     `json:"check_in_count"`
	UpdatedAt     string  `json:"updated_at"`
}

type Reply struct {
	ID          string `json:"id"`
	ParentID    string `json:"parent_id"`
	ChallengeID string `json:"challenge_id"`
	User        User   `json:"user"`
	Content     string `json:"content"`
	LikesCount  int    `json:"likes_count"`
	LikedByMe   bool   `json:"liked_by_me"`
	CreatedAt   string `json:"created_at"`
}

type TopLevelComment struct {
	ID          string  `json:"id"`
	ChallengeID string  `json:"challenge_id"`
	User        User    `json:"user"`
	Content     string  `json:"content"`
	LikesCount  int     `json:"likes_count"`
	LikedByMe   bool    `json:"liked_by_me"`
	IsPinned    bool    `json:"is_pinned"`
	CreatedAt   string  `json:"created_at"`
	Replies     []Reply `json:"replies"`
}

type Standing struct {
	User   User    `json:"user"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
	Change int     `json:"change"`
}
