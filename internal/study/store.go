package study

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("study: session not found")

// Store はメモリ上の学習セッション置き場です
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

// Do は userID が所有するセッションに対して fn をロック下で実行します。
// 他人のセッションは存在しないものとして扱います。
func (st *Store) Do(id, userID uuid.UUID, fn func(s *Session) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok || s.UserID != userID {
		return ErrSessionNotFound
	}
	return fn(s)
}

func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// CountActiveForUser はユーザーの進行中セッション数
func (st *Store) CountActiveForUser(userID uuid.UUID) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for _, s := range st.sessions {
		if s.UserID == userID && s.Status == StatusActive {
			n++
		}
	}
	return n
}

// Sweep は最終更新が cutoff より前のセッションを削除し、削除数を返します
func (st *Store) Sweep(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
