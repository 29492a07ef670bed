package sessions

import (
	"time"

	"github.com/samber/lo"
)

// Session is a scheduled class held by a teacher. Users is the roster of participant
// user IDs and never holds the same ID twice.
type Session struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	TeacherID   int64     `json:"teacher_id"`
	Users       []int64   `json:"users"`
	Version     int64     `json:"-"` // bumped by every successful save
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasParticipant reports whether userID is on the roster.
func (s *Session) HasParticipant(userID int64) bool {
	return lo.Contains(s.Users, userID)
}

// AddParticipant appends userID to the roster. It reports false, leaving the roster
// untouched, when the user is already on it.
func (s *Session) AddParticipant(userID int64) bool {
	if s.HasParticipant(userID) {
		return false
	}
	s.Users = append(s.Users, userID)
	return true
}

// RemoveParticipant drops userID from the roster. It reports false when the user was not on it.
func (s *Session) RemoveParticipant(userID int64) bool {
	if !s.HasParticipant(userID) {
		return false
	}
	s.Users = lo.Without(s.Users, userID)
	return true
}

// Clone returns a deep copy so stores never share roster slices with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Users = append(make([]int64, 0, len(s.Users)), s.Users...)
	return &c
}
