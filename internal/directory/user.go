package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tamaralmogy/message-app/internal/models"
	"github.com/tamaralmogy/message-app/internal/storage"
)

var ErrUserNotFound = errors.New("user not found")

// UserDirectory owns user records and block relationships.
type UserDirectory interface {
	Register(ctx context.Context, name, email string) (models.User, error)
	// Delete is idempotent: deleting an unknown id succeeds.
	Delete(ctx context.Context, userID string) error
	Block(ctx context.Context, blockerID, blockedID string) error
	IsBlocked(ctx context.Context, blockerID, senderID string) (bool, error)
}

// UserDir is a KV-backed implementation of UserDirectory.
type UserDir struct {
	store storage.KV
}

// NewUserDir constructs a UserDir on the given store.
func NewUserDir(store storage.KV) *UserDir {
	return &UserDir{store: store}
}

var _ UserDirectory = (*UserDir)(nil)

// Register stores a new user record under a generated id.
func (d *UserDir) Register(ctx context.Context, name, email string) (models.User, error) {
	user := models.User{
		UserID: uuid.NewString(),
		Name:   name,
		Email:  email,
	}
	value, err := json.Marshal(user)
	if err != nil {
		return models.User{}, err
	}
	if err := d.store.Put(ctx, storage.Users, user.UserID, value); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Delete removes the record if present; an absent id is a no-op.
func (d *UserDir) Delete(ctx context.Context, userID string) error {
	return d.store.Delete(ctx, storage.Users, userID)
}

// Block adds blockedID to the blocker's block list. Set semantics: a
// repeated block of the same id is not stored twice. The block list
// only grows, there is no unblock.
func (d *UserDir) Block(ctx context.Context, blockerID, blockedID string) error {
	return d.store.Update(ctx, storage.Users, blockerID, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, fmt.Errorf("block %s: %w", blockerID, ErrUserNotFound)
		}
		var user models.User
		if err := json.Unmarshal(current, &user); err != nil {
			return nil, err
		}
		if user.HasBlocked(blockedID) {
			return current, nil
		}
		user.BlockedUsers = append(user.BlockedUsers, blockedID)
		return json.Marshal(user)
	})
}

// IsBlocked reports whether the blocker exists and has senderID on its
// block list. An absent blocker record is not an error.
func (d *UserDir) IsBlocked(ctx context.Context, blockerID, senderID string) (bool, error) {
	value, err := d.store.Get(ctx, storage.Users, blockerID)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var user models.User
	if err := json.Unmarshal(value, &user); err != nil {
		return false, err
	}
	return user.HasBlocked(senderID), nil
}
