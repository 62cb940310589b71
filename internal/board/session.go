package board

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoActiveCell is returned when a commit or clear is attempted
	// without a selected cell.
	ErrNoActiveCell = errors.New("no active cell")

	// ErrNoAccount is returned when a session is created or used without
	// an authenticated account name.
	ErrNoAccount = errors.New("no account")
)

// Publisher is the outbound half of the sync gateway as seen by a session.
type Publisher interface {
	PublishCell(key CellKey, c Cell) error
}

// Draft is the in-progress edit of the active cell.
type Draft struct {
	Text  string
	Color Color
}

// Session owns one user's local board replica and edit state. Local commits
// are published through the gateway and the board converges on whatever
// snapshots the store delivers; the open draft is the only state a remote
// snapshot never touches.
type Session struct {
	mu      sync.RWMutex
	account string
	pub     Publisher

	board  Board
	active CellKey // 0 when no cell is selected
	draft  Draft
}

// NewSession creates a session for an authenticated account. The board
// starts fully defaulted and is replaced verbatim by the first remote
// snapshot.
func NewSession(account string, pub Publisher) (*Session, error) {
	if account == "" {
		return nil, ErrNoAccount
	}
	return &Session{
		account: account,
		pub:     pub,
		board:   NewBoard(),
	}, nil
}

// Account returns the authenticated account name.
func (s *Session) Account() string {
	return s.account
}

// Board returns a copy of the current local replica.
func (s *Session) Board() Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Clone()
}

// Cell returns the current content of one cell.
func (s *Session) Cell(key CellKey) (Cell, error) {
	if err := key.Validate(); err != nil {
		return Cell{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board[key], nil
}

// ActiveCell returns the selected cell key, or false when no edit is open.
func (s *Session) ActiveCell() (CellKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != 0
}

// Draft returns the current draft buffer.
func (s *Session) Draft() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// SelectCell marks key as the active edit target and loads its current
// content into the draft buffer. The board itself is not mutated.
func (s *Session) SelectCell(key CellKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.board[key]
	s.active = key
	s.draft = Draft{Text: c.Text, Color: c.Color}
	return nil
}

// SetDraftText updates the draft text. No-op without an active cell.
func (s *Session) SetDraftText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == 0 {
		return ErrNoActiveCell
	}
	s.draft.Text = text
	return nil
}

// SetDraftColor updates the draft color.
func (s *Session) SetDraftColor(c Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == 0 {
		return ErrNoActiveCell
	}
	s.draft.Color = c
	return nil
}

// CommitDraft publishes the draft for the active cell and closes the edit.
// The write is fire-and-forget: the local replica is updated optimistically
// and the store's next snapshot is authoritative. On publish failure the
// edit stays open so the caller can retry.
func (s *Session) CommitDraft() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.draft)
}

// ClearCell publishes a blank white value for the active cell, regardless of
// the draft content, and closes the edit.
func (s *Session) ClearCell() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(Draft{Text: "", Color: ColorWhite})
}

func (s *Session) commit(d Draft) error {
	if s.account == "" {
		return ErrNoAccount
	}
	if s.active == 0 {
		return ErrNoActiveCell
	}
	key := s.active
	c := Cell{Text: d.Text, Color: d.Color, UpdatedBy: s.account}
	if err := s.pub.PublishCell(key, c); err != nil {
		return fmt.Errorf("publish cell %d: %w", int(key), err)
	}

	// Optimistic local apply; UpdatedAt stays absent until the store's
	// snapshot carries the server-assigned timestamp back.
	s.board[key] = c
	s.active = 0
	s.draft = Draft{}
	return nil
}

// CancelEdit closes the edit without publishing. Always succeeds.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = 0
	s.draft = Draft{}
}

// ApplyRemote replaces the local replica with a snapshot from the store.
// Whole-board replace, not a merge: the last snapshot delivered wins. The
// open draft is deliberately left untouched so in-progress typing is never
// destroyed; it reconverges on the next SelectCell, commit, or cancel.
func (s *Session) ApplyRemote(snapshot Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = snapshot.Clone()
}
