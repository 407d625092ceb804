package user

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a member of the social graph. Friends are loaded one
// level deep: each entry carries its own hobbies but never its own friends,
// which keeps every read bounded regardless of graph size.
type User struct {
	ID        uuid.UUID
	Username  string
	Age       int
	Hobbies   []string
	Friends   []User
	CreatedAt time.Time
}

// HasFriend reports whether the user's friend set contains the given id.
func (u *User) HasFriend(id uuid.UUID) bool {
	for _, f := range u.Friends {
		if f.ID == id {
			return true
		}
	}
	return false
}

// FriendIDs returns the ids of the user's friends, never nil.
func (u *User) FriendIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u.Friends))
	for _, f := range u.Friends {
		ids = append(ids, f.ID)
	}
	return ids
}

// NormalizeHobbies converts a raw hobby list into set form: whitespace
// trimmed, empty entries dropped, duplicates removed, order made stable.
// A nil input yields an empty set, never nil.
func NormalizeHobbies(hobbies []string) []string {
	out := make([]string, 0, len(hobbies))
	seen := make(map[string]struct{}, len(hobbies))
	for _, h := range hobbies {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// SharedHobbyCount returns the size of the intersection of two hobby sets.
func SharedHobbyCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, h := range a {
		set[h] = struct{}{}
	}
	count := 0
	for _, h := range b {
		if _, ok := set[h]; ok {
			count++
		}
	}
	return count
}

// PopularityScore computes the derived popularity metric:
//
//	score = friendCount + 0.5 * sum over friends of shared hobby count
//
// Each friend contributes half a point per hobby it shares with the subject;
// overlaps are counted per friend pair, not deduplicated across the whole
// friend group. The score is recomputed from current state on every call and
// is never persisted.
func PopularityScore(u *User) float64 {
	shared := 0
	for i := range u.Friends {
		shared += SharedHobbyCount(u.Hobbies, u.Friends[i].Hobbies)
	}
	return float64(len(u.Friends)) + 0.5*float64(shared)
}
