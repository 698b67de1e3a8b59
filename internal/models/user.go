package models

// User is a registered account. Records are stored as JSON documents in
// the users collection, keyed by UserID.
type User struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	// BlockedUsers holds the ids this account refuses direct messages
	// from. Set semantics: an id appears at most once, and entries are
	// never removed.
	BlockedUsers []string `json:"blockedUsers,omitempty"`
}

// HasBlocked reports whether senderID is on the user's block list.
func (u User) HasBlocked(senderID string) bool {
	for _, id := range u.BlockedUsers {
		if id == senderID {
			return true
		}
	}
	return false
}
