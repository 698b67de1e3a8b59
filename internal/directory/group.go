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

var ErrGroupNotFound = errors.New("group not found")

// GroupDirectory owns group records and membership lists.
type GroupDirectory interface {
	Create(ctx context.Context, groupName string, members []string) (models.Group, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	GetMembers(ctx context.Context, groupID string) ([]string, error)
}

// GroupDir is a KV-backed implementation of GroupDirectory.
type GroupDir struct {
	store storage.KV
}

// NewGroupDir constructs a GroupDir on the given store.
func NewGroupDir(store storage.KV) *GroupDir {
	return &GroupDir{store: store}
}

var _ GroupDirectory = (*GroupDir)(nil)

// Create stores a new group with the given members verbatim; member ids
// are not checked against the user directory.
func (d *GroupDir) Create(ctx context.Context, groupName string, members []string) (models.Group, error) {
	group := models.Group{
		GroupID:   uuid.NewString(),
		GroupName: groupName,
		Members:   members,
	}
	value, err := json.Marshal(group)
	if err != nil {
		return models.Group{}, err
	}
	if err := d.store.Put(ctx, storage.Groups, group.GroupID, value); err != nil {
		return models.Group{}, err
	}
	return group, nil
}

// AddMember appends userID to the member sequence. No dedup: adding the
// same user twice yields two entries.
func (d *GroupDir) AddMember(ctx context.Context, groupID, userID string) error {
	return d.mutateMembers(ctx, groupID, func(members []string) []string {
		return append(members, userID)
	})
}

// RemoveMember filters every occurrence of userID out of the member
// sequence. The rewrite runs inside the store's atomic update, so a
// racing AddMember is not lost.
func (d *GroupDir) RemoveMember(ctx context.Context, groupID, userID string) error {
	return d.mutateMembers(ctx, groupID, func(members []string) []string {
		kept := make([]string, 0, len(members))
		for _, id := range members {
			if id != userID {
				kept = append(kept, id)
			}
		}
		return kept
	})
}

// GetMembers returns the member sequence in stored order.
func (d *GroupDir) GetMembers(ctx context.Context, groupID string) ([]string, error) {
	value, err := d.store.Get(ctx, storage.Groups, groupID)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrGroupNotFound)
	}
	if err != nil {
		return nil, err
	}
	var group models.Group
	if err := json.Unmarshal(value, &group); err != nil {
		return nil, err
	}
	return group.Members, nil
}

func (d *GroupDir) mutateMembers(ctx context.Context, groupID string, mutate func([]string) []string) error {
	return d.store.Update(ctx, storage.Groups, groupID, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, fmt.Errorf("group %s: %w", groupID, ErrGroupNotFound)
		}
		var group models.Group
		if err := json.Unmarshal(current, &group); err != nil {
			return nil, err
		}
		group.Members = mutate(group.Members)
		return json.Marshal(group)
	})
}
