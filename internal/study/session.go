// Package study は学習セッションのカード送り・ミス管理・周回管理を行います。
// DB には依存せず、service 層から Store 経由で操作されます。
package study

import (
	"errors"
	"maps"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeNormal   Mode = "normal"   // 1周で終了。ミスしたカードだけで再挑戦できる
	ModeInfinite Mode = "infinite" // 周回ごとに全体をシャッフルし直して終わらない
	ModeMastery  Mode = "mastery"  // ノーミスの周回が規定回数連続したら終了
)

func (m Mode) Valid() bool {
	switch m {
	case ModeNormal, ModeInfinite, ModeMastery:
		return true
	}
	return false
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFinished  Status = "finished" // ユーザーが途中で終了した
)

var (
	ErrEmptyDeck      = errors.New("study: deck is empty")
	ErrInvalidMode    = errors.New("study: invalid mode")
	ErrSessionClosed  = errors.New("study: session is not active")
	ErrCardMismatch   = errors.New("study: answered card is not the current card")
	ErrNoMistakes     = errors.New("study: no mistakes to review")
	ErrReviewNotReady = errors.New("study: mistakes can be reviewed only after a normal round completes")
)

type Card struct {
	ID    uuid.UUID `json:"card_id"`
	Front string    `json:"front"`
	Back  string    `json:"back"`
}

type Options struct {
	MasteryTarget int
	Rand          *rand.Rand
	Now           time.Time
}

// Session は1人のユーザーの学習状態です。Store のロック下でのみ操作してください。
type Session struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CreatorID    uuid.UUID
	PlaylistName string
	Mode         Mode
	Status       Status

	deck  []Card
	round []Card
	pos   int

	Cycle              int
	Answered           int
	Correct            int
	Incorrect          int
	CurrentStreak      int
	BestStreak         int
	PerfectCycles      int
	ConsecutivePerfect int
	MasteryTarget      int

	roundMissed     map[uuid.UUID]struct{}
	missed          map[uuid.UUID]int // 一度でも間違えたカード。削除しない
	lastRoundMissed []uuid.UUID

	reportedAnswers    int
	reportedPerfect    int
	completionReported bool
	rev                uint64

	StartedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time

	rng *rand.Rand
}

// AnswerResult は1回の回答で起きた状態遷移
type AnswerResult struct {
	Correct          bool
	CycleCompleted   bool
	PerfectCycle     bool
	SessionCompleted bool
}

func NewSession(id, userID, creatorID uuid.UUID, playlist string, mode Mode, cards []Card, opts Options) (*Session, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	if len(cards) == 0 {
		return nil, ErrEmptyDeck
	}
	rng := opts.Rand
	if rng == nil {
		rng = NewRand()
	}
	target := opts.MasteryTarget
	if target <= 0 {
		target = 1
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	deck := make([]Card, len(cards))
	copy(deck, cards)

	s := &Session{
		ID:            id,
		UserID:        userID,
		CreatorID:     creatorID,
		PlaylistName:  playlist,
		Mode:          mode,
		Status:        StatusActive,
		deck:          deck,
		Cycle:         1,
		MasteryTarget: target,
		roundMissed:   make(map[uuid.UUID]struct{}),
		missed:        make(map[uuid.UUID]int),
		StartedAt:     now,
		UpdatedAt:     now,
		rng:           rng,
	}
	s.round = Shuffle(s.deck, s.rng)
	return s, nil
}

// Current は次に出題するカードを返します
func (s *Session) Current() (Card, bool) {
	if s.Status != StatusActive || s.pos >= len(s.round) {
		return Card{}, false
	}
	return s.round[s.pos], true
}

func (s *Session) Answer(cardID uuid.UUID, correct bool, now time.Time) (AnswerResult, error) {
	current, ok := s.Current()
	if !ok {
		return AnswerResult{}, ErrSessionClosed
	}
	if current.ID != cardID {
		return AnswerResult{}, ErrCardMismatch
	}

	res := AnswerResult{Correct: correct}
	s.Answered++
	if correct {
		s.Correct++
		s.CurrentStreak++
		if s.CurrentStreak > s.BestStreak {
			s.BestStreak = s.CurrentStreak
		}
	} else {
		s.Incorrect++
		s.CurrentStreak = 0
		s.roundMissed[cardID] = struct{}{}
		s.missed[cardID]++
	}
	s.pos++
	s.touch(now)

	if s.pos >= len(s.round) {
		s.endRound(&res, now)
	}
	return res, nil
}

func (s *Session) endRound(res *AnswerResult, now time.Time) {
	res.CycleCompleted = true
	res.PerfectCycle = len(s.roundMissed) == 0

	// 周回内の出題順でミスを記録する
	s.lastRoundMissed = s.lastRoundMissed[:0]
	for _, c := range s.round {
		if _, ok := s.roundMissed[c.ID]; ok {
			s.lastRoundMissed = append(s.lastRoundMissed, c.ID)
		}
	}

	if res.PerfectCycle {
		s.PerfectCycles++
		s.ConsecutivePerfect++
	} else {
		s.ConsecutivePerfect = 0
	}

	switch s.Mode {
	case ModeNormal:
		s.complete(now)
	case ModeMastery:
		if s.ConsecutivePerfect >= s.MasteryTarget {
			s.complete(now)
			break
		}
		s.nextRound(s.deck)
	case ModeInfinite:
		s.nextRound(s.deck)
	}
	res.SessionCompleted = s.Status == StatusCompleted
}

func (s *Session) nextRound(cards []Card) {
	s.round = Shuffle(cards, s.rng)
	s.pos = 0
	s.Cycle++
	s.roundMissed = make(map[uuid.UUID]struct{})
}

func (s *Session) complete(now time.Time) {
	s.Status = StatusCompleted
	t := now
	s.CompletedAt = &t
}

// ReviewMistakes は通常モードで直前の周回のミスだけを新しい周回として出題し直します
func (s *Session) ReviewMistakes(now time.Time) error {
	if s.Mode != ModeNormal || s.Status != StatusCompleted {
		return ErrReviewNotReady
	}
	if len(s.lastRoundMissed) == 0 {
		return ErrNoMistakes
	}
	byID := make(map[uuid.UUID]Card, len(s.deck))
	for _, c := range s.deck {
		byID[c.ID] = c
	}
	cards := make([]Card, 0, len(s.lastRoundMissed))
	for _, id := range s.lastRoundMissed {
		cards = append(cards, byID[id])
	}
	s.nextRound(cards)
	s.Status = StatusActive
	s.CompletedAt = nil
	s.touch(now)
	return nil
}

// Finish はセッションを終了します。終了済みなら何もしません。
func (s *Session) Finish(now time.Time) {
	if s.Status != StatusActive {
		return
	}
	s.Status = StatusFinished
	t := now
	s.CompletedAt = &t
	s.touch(now)
}

// MissedCards は一度でも間違えたカードを山札の順で返します
func (s *Session) MissedCards() []Card {
	out := make([]Card, 0, len(s.missed))
	for _, c := range s.deck {
		if _, ok := s.missed[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *Session) MissCount(cardID uuid.UUID) int {
	return s.missed[cardID]
}

// LastRoundMissed は直前に終わった周回でミスしたカードID
func (s *Session) LastRoundMissed() []uuid.UUID {
	out := make([]uuid.UUID, len(s.lastRoundMissed))
	copy(out, s.lastRoundMissed)
	return out
}

func (s *Session) DeckSize() int  { return len(s.deck) }
func (s *Session) RoundSize() int { return len(s.round) }
func (s *Session) Position() int  { return s.pos }

// Round は現在の周回の出題順のコピーを返します
func (s *Session) Round() []Card {
	out := make([]Card, len(s.round))
	copy(out, s.round)
	return out
}

// Report は DB にまだ反映していない進捗です
type Report struct {
	Answers       int
	PerfectCycles int
	Completed     bool
}

func (r Report) Empty() bool {
	return r.Answers == 0 && r.PerfectCycles == 0 && !r.Completed
}

// TakeReport は前回以降の進捗を取り出します。
// completed が true なら完了報酬を初回だけ含めます。
func (s *Session) TakeReport(completed bool) Report {
	r := Report{
		Answers:       s.Answered - s.reportedAnswers,
		PerfectCycles: s.PerfectCycles - s.reportedPerfect,
	}
	s.reportedAnswers = s.Answered
	s.reportedPerfect = s.PerfectCycles
	if completed && !s.completionReported {
		s.completionReported = true
		r.Completed = true
	}
	return r
}

// ReturnReport は反映できなかった進捗を未反映に戻します
func (s *Session) ReturnReport(r Report) {
	s.reportedAnswers -= r.Answers
	s.reportedPerfect -= r.PerfectCycles
	if r.Completed {
		s.completionReported = false
	}
	s.rev++
}

// Revision は状態が変わるたびに増えます
func (s *Session) Revision() uint64 {
	return s.rev
}

// Snapshot は Restore で戻せるよう現在の状態を複製します
func (s *Session) Snapshot() Session {
	cp := *s
	cp.roundMissed = maps.Clone(s.roundMissed)
	cp.missed = maps.Clone(s.missed)
	cp.lastRoundMissed = slices.Clone(s.lastRoundMissed)
	return cp
}

// Restore は Snapshot の時点の状態に戻します
func (s *Session) Restore(snap Session) {
	rev := s.rev
	*s = snap
	s.rev = rev + 1
}

func (s *Session) touch(now time.Time) {
	s.UpdatedAt = now
	s.rev++
}

