package model

type LeaderboardEntry struct {
	Rank          int         `json:"rank"`
	User          UserSummary `json:"user"`
	XP            int64       `json:"xp"`
	CurrentStreak int         `json:"current_streak"`
	IsMe          bool        `json:"is_me"`
}
