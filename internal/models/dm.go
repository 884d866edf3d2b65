package models

import "time"

// Thread is the direct conversation between exactly two distinct users.
// ParticipantOne and ParticipantTwo keep the order the thread was first
// created with; the pair itself is unordered for identity purposes.
type Thread struct {
	ID               int64     `json:"id"`
	ParticipantOneID int64     `json:"-"`
	ParticipantTwoID int64     `json:"-"`
	ParticipantOne   *User     `json:"participant_one"`
	ParticipantTwo   *User     `json:"participant_two"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasParticipant reports whether userID occupies either slot of the thread.
func (t *Thread) HasParticipant(userID int64) bool {
	return t.ParticipantOneID == userID || t.ParticipantTwoID == userID
}

// PairKey returns the canonical (low, high) form of an unordered pair.
func PairKey(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Message is one text unit posted by a participant into a thread.
type Message struct {
	ID        int64     `json:"id"`
	SenderID  int64     `json:"-"`
	Sender    *User     `json:"sender"`
	Text      string    `json:"text"`
	ThreadID  int64     `json:"thread"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
