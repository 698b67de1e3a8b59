package models

// Group is a named member list, stored as a JSON document in the groups
// collection keyed by GroupID.
type Group struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	// Members is an ordered sequence of user ids. Duplicates are
	// permitted and ids are stored verbatim, without an existence check.
	Members []string `json:"members"`
}
