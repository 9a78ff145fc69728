package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Like is the wire and storage form of a single like.
type Like struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeSet maps a user id to the time the like was given. Keying by user makes
// a second like from the same user impossible to represent.
type LikeSet map[string]time.Time

// Has reports whether userID has liked.
func (s LikeSet) Has(userID string) bool {
	_, ok := s[userID]
	return ok
}

// Len returns the number of likes.
func (s LikeSet) Len() int { return len(s) }

// Toggle removes the like of userID if present, otherwise adds it at now.
// It reports whether the user likes the target afterwards.
func (s *LikeSet) Toggle(userID string, now time.Time) bool {
	if *s == nil {
		*s = LikeSet{}
	}
	if _, ok := (*s)[userID]; ok {
		delete(*s, userID)
		return false
	}
	(*s)[userID] = now
	return true
}

// List returns the likes ordered by time, then user id.
func (s LikeSet) List() []Like {
	out := make([]Like, 0, len(s))
	for u, at := range s {
		out = append(out, Like{UserID: u, CreatedAt: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Clone copies the set.
func (s LikeSet) Clone() LikeSet {
	c := make(LikeSet, len(s))
	for u, at := range s {
		c[u] = at
	}
	return c
}

// MarshalJSON encodes the set as an array of likes.
func (s LikeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON decodes an array of likes. Repeated users collapse to the
// earliest like. Rows written with the older "user" key still decode.
func (s *LikeSet) UnmarshalJSON(b []byte) error {
	var list []struct {
		Like
		LegacyUser string `json:"user"`
	}
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	set := make(LikeSet, len(list))
	for _, l := range list {
		user := l.UserID
		if user == "" {
			user = l.LegacyUser
		}
		if at, ok := set[user]; ok && !l.CreatedAt.Before(at) {
			continue
		}
		set[user] = l.CreatedAt
	}
	*s = set
	return nil
}
