package model

type GetLeaderboardRequest struct {
	Type        string `json:"type"`
	ChallengeID string `json:"challenge_id"`
	Limit       int    `json:"limit"`
}

type GetLeaderboardResponse struct {
	Standings []Standing `json:"standings"`
}

type GetMyRankRequest struct {
	Type        string `json:"type"`
	ChallengeID string `json:"challenge_id"`
}

type GetMyRankResponse struct {
	Standing *Standing `json:"standing"`
}
