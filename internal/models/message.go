package models

// Message is a single delivered copy of a message. A group send
// produces one Message per member, all sharing the same MessageID and
// differing only in RecipientID. Messages are immutable once stored.
type Message struct {
	MessageID   string `json:"messageId"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	// GroupID is set only on group-originated copies.
	GroupID   string `json:"groupId,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// MessageEvent is broadcast through websocket feeds.
type MessageEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}
