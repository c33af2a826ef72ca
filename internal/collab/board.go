package collab

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultAuthor is used for comments when no author is configured.
const DefaultAuthor = "Current User"

var (
	ErrInvalidEmail          = errors.New("please enter a valid email address")
	ErrDuplicateCollaborator = errors.New("this collaborator has already been added")
	ErrEmptyComment          = errors.New("please enter a comment")
)

// Comment is a session note.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type collaborator struct {
	Email string `validate:"required,contains=@"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Board holds session-scoped collaborators and comments. Collaborators keep
// insertion order; comments are append-only and deletable by id.
type Board struct {
	mu            sync.RWMutex
	author        string
	collaborators []string
	comments      []Comment

	// now is replaceable in tests.
	now func() time.Time
}

// NewBoard returns an empty board. An empty author falls back to DefaultAuthor.
func NewBoard(author string) *Board {
	author = strings.TrimSpace(author)
	if author == "" {
		author = DefaultAuthor
	}
	return &Board{author: author, now: time.Now}
}

// Author is the name stamped on new comments.
func (b *Board) Author() string { return b.author }

// AddCollaborator registers an email. The address must contain "@" and not
// already be present.
func (b *Board) AddCollaborator(email string) error {
	if err := validate.Struct(collaborator{Email: email}); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.collaborators {
		if c == email {
			return fmt.Errorf("%w: %s", ErrDuplicateCollaborator, email)
		}
	}
	b.collaborators = append(b.collaborators, email)
	return nil
}

// RemoveCollaborator reports whether the email was present.
func (b *Board) RemoveCollaborator(email string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, c := range b.collaborators {
		if c == email {
			b.collaborators = append(b.collaborators[:i:i], b.collaborators[i+1:]...)
			return true
		}
	}
	return false
}

// Collaborators returns a copy in insertion order.
func (b *Board) Collaborators() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.collaborators...)
}

// AddComment appends a trimmed, non-empty comment and returns it.
func (b *Board) AddComment(text string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrEmptyComment
	}
	c := Comment{
		ID:        uuid.NewString(),
		Author:    b.author,
		Text:      text,
		Timestamp: b.now().UTC(),
	}
	b.mu.Lock()
	b.comments = append(b.comments, c)
	b.mu.Unlock()
	return c, nil
}

// DeleteComment removes a comment by id, or by a unique id prefix of at
// least four characters. It reports whether a comment was removed.
func (b *Board) DeleteComment(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := -1
	for i, c := range b.comments {
		if c.ID == id {
			idx = i
			break
		}
		if len(id) >= 4 && strings.HasPrefix(c.ID, id) {
			if idx >= 0 {
				return false
			}
			idx = i
		}
	}
	if idx < 0 {
		return false
	}
	b.comments = append(b.comments[:idx:idx], b.comments[idx+1:]...)
	return true
}

// Comments returns a copy in insertion order.
func (b *Board) Comments() []Comment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Comment(nil), b.comments...)
}
