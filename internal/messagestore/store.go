package messagestore

import (
	"context"
	"encoding/json"

	"github.com/tamaralmogy/message-app/internal/models"
	"github.com/tamaralmogy/message-app/internal/storage"
)

// MessageStore persists and retrieves delivered message copies.
type MessageStore interface {
	Append(ctx context.Context, msg models.Message) error
	ListForRecipient(ctx context.Context, userID string) ([]models.Message, error)
}

// Store is a KV-backed MessageStore. Copies are keyed by
// "<messageId>/<recipientId>" so the fan-out copies of one group send
// coexist under their shared message id.
type Store struct {
	store storage.KV
}

// NewStore constructs a Store on the given KV.
func NewStore(store storage.KV) *Store {
	return &Store{store: store}
}

var _ MessageStore = (*Store)(nil)

// Append writes the copy unconditionally. The caller supplies a
// pre-populated MessageID.
func (s *Store) Append(ctx context.Context, msg models.Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, storage.Messages, msg.MessageID+"/"+msg.RecipientID, value)
}

// ListForRecipient returns every copy stored for userID, in unspecified
// order. This is a full-collection predicate scan, O(total messages in
// the store) rather than O(the recipient's messages); callers needing
// efficient retrieval would have to maintain a secondary index keyed on
// recipientId.
func (s *Store) ListForRecipient(ctx context.Context, userID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.store.Scan(ctx, storage.Messages, func(key string, value []byte) error {
		var msg models.Message
		if err := json.Unmarshal(value, &msg); err != nil {
			return err
		}
		if msg.RecipientID == userID {
			msgs = append(msgs, msg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
