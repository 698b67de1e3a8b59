package delivery

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tamaralmogy/message-app/internal/directory"
	"github.com/tamaralmogy/message-app/internal/messagestore"
	"github.com/tamaralmogy/message-app/internal/models"
)

var (
	// ErrBlocked is a terminal business outcome, not a system fault:
	// the recipient has the sender on its block list and no copy is
	// stored.
	ErrBlocked = errors.New("sender is blocked by recipient")
	// ErrEmptyGroup rejects group sends with nobody to deliver to.
	ErrEmptyGroup = errors.New("group has no members")
)

// Sender is the delivery surface handlers depend on.
type Sender interface {
	SendDirect(ctx context.Context, senderID, recipientID, content, timestamp string) (models.Message, error)
	SendGroup(ctx context.Context, senderID, groupID, content, timestamp string) ([]models.Message, error)
}

// Engine decides whether a direct message may be delivered and fans
// group messages out to each member.
type Engine struct {
	users    directory.UserDirectory
	groups   directory.GroupDirectory
	messages messagestore.MessageStore
}

var _ Sender = (*Engine)(nil)

// NewEngine constructs an Engine.
func NewEngine(users directory.UserDirectory, groups directory.GroupDirectory, messages messagestore.MessageStore) *Engine {
	return &Engine{users: users, groups: groups, messages: messages}
}

// SendDirect stores one copy for the recipient unless the recipient has
// blocked the sender. A recipient with no user record is not an error:
// the copy is stored anyway.
func (e *Engine) SendDirect(ctx context.Context, senderID, recipientID, content, timestamp string) (models.Message, error) {
	blocked, err := e.users.IsBlocked(ctx, recipientID, senderID)
	if err != nil {
		return models.Message{}, err
	}
	if blocked {
		return models.Message{}, ErrBlocked
	}

	msg := models.Message{
		MessageID:   uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Timestamp:   timestamp,
	}
	if err := e.messages.Append(ctx, msg); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// SendGroup resolves the group and stores one copy per member, all
// sharing a single generated message id. Members are taken verbatim:
// duplicates get duplicate copies and the sender is not skipped. No
// block check applies to group sends.
//
// Fan-out is not transactional. When an append fails partway through,
// the copies already written remain and the storage error is returned
// as-is; the slice of copies written so far is returned alongside it.
func (e *Engine) SendGroup(ctx context.Context, senderID, groupID, content, timestamp string) ([]models.Message, error) {
	members, err := e.groups.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrEmptyGroup
	}

	messageID := uuid.NewString()
	copies := make([]models.Message, 0, len(members))
	for _, memberID := range members {
		msg := models.Message{
			MessageID:   messageID,
			SenderID:    senderID,
			RecipientID: memberID,
			GroupID:     groupID,
			Content:     content,
			Timestamp:   timestamp,
		}
		if err := e.messages.Append(ctx, msg); err != nil {
			return copies, err
		}
		copies = append(copies, msg)
	}
	return copies, nil
}
