package model

type GetChallengeRequest struct {
	ChallengeID string `json:"challenge_id"`
}

type GetChallengeResponse struct {
	Challenge Challenge `json:"challenge"`
}

type JoinChallengeRequest struct {
	ChallengeID string `json:"challenge_id"`
}

type JoinChallengeResponse struct {
	Participation Participation `json:"participation"`
}

type CheckInRequest struct {
	ChallengeID string `json:"challenge_id"`
	Note        string `json:"note"`
}

type CheckInResponse struct {
	Participation Participation `json:"participation"`
	Completed     bool          `json:"completed"`
}

type LeaveChallengeRequest struct {
	ChallengeID string `json:"challenge_id"`
}

type LeaveChallengeResponse struct {
	Participation Participation `json:"participation"`
}

type GetParticipationRequest struct {
	ChallengeID string `json:"challenge_id"`
}

type GetParticipationResponse struct {
	Participation Participation `json:"participation"`
}

type GetMyParticipationsRequest struct {
	Status string `json:"status"`
}

type GetMyParticipationsResponse struct {
	Participations []Participation `json:"participations"`
}
