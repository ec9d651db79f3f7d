// internal/model/study.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// StartStudyRequest は学習セッション開始リクエストのDTO
// CreatorID を省略すると自分のプレイリストを対象にします。
type StartStudyRequest struct {
	PlaylistName string     `json:"playlist_name" validate:"required,max=100"`
	CreatorID    *uuid.UUID `json:"creator_id,omitempty"`
	Mode         string     `json:"mode" validate:"required,oneof=normal infinite mastery"`
	Received     bool       `json:"received"` // 友達から共有されたカードで学習する
}

// SubmitAnswerRequest は回答送信リクエストのDTO
type SubmitAnswerRequest struct {
	CardID    uuid.UUID `json:"card_id" validate:"required"`
	IsCorrect *bool     `json:"is_correct" validate:"required"`
}

type StudyCard struct {
	CardID uuid.UUID `json:"card_id"`
	Front  string    `json:"front"`
	Back   string    `json:"back"`
}

type MissedCard struct {
	StudyCard
	Misses int `json:"misses"`
}

// StudySessionResponse は学習セッションの状態
type StudySessionResponse struct {
	SessionID          uuid.UUID    `json:"session_id"`
	PlaylistName       string       `json:"playlist_name"`
	CreatorID          uuid.UUID    `json:"creator_id"`
	Mode               string       `json:"mode"`
	Status             string       `json:"status"`
	CurrentCard        *StudyCard   `json:"current_card,omitempty"`
	Position           int          `json:"position"`
	RoundSize          int          `json:"round_size"`
	DeckSize           int          `json:"deck_size"`
	Cycle              int          `json:"cycle"`
	Answered           int          `json:"answered"`
	Correct            int          `json:"correct"`
	Incorrect          int          `json:"incorrect"`
	CurrentStreak      int          `json:"current_streak"`
	BestStreak         int          `json:"best_streak"`
	PerfectCycles      int          `json:"perfect_cycles"`
	ConsecutivePerfect int          `json:"consecutive_perfect"`
	MasteryTarget      int          `json:"mastery_target,omitempty"`
	MissedCards        []MissedCard `json:"missed_cards"`
	LastRoundMissed    []uuid.UUID  `json:"last_round_missed"`
	StartedAt          time.Time    `json:"started_at"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`
}

// AnswerResponse は回答後の状態と、その回答で起きたイベント
type AnswerResponse struct {
	Correct          bool                  `json:"correct"`
	CycleCompleted   bool                  `json:"cycle_completed"`
	PerfectCycle     bool                  `json:"perfect_cycle"`
	SessionCompleted bool                  `json:"session_completed"`
	Session          *StudySessionResponse `json:"session"`
	QuestsCompleted  []QuestCompletion     `json:"quests_completed,omitempty"`
	Streak           *StreakResponse       `json:"streak,omitempty"`
}

// FinishResponse はセッション終了時のまとめ
type FinishResponse struct {
	Session         *StudySessionResponse `json:"session"`
	QuestsCompleted []QuestCompletion     `json:"quests_completed,omitempty"`
	Streak          *StreakResponse       `json:"streak,omitempty"`
}
