package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tamaralmogy/message-app/internal/delivery"
	"github.com/tamaralmogy/message-app/internal/directory"
	"github.com/tamaralmogy/message-app/internal/messagestore"
	"github.com/tamaralmogy/message-app/internal/models"
	"github.com/tamaralmogy/message-app/internal/telemetry"
)

type UserDirectoryMock struct {
	mock.Mock
}

func (m *UserDirectoryMock) Register(ctx context.Context, name, email string) (models.User, error) {
	args := m.Called(ctx, name, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserDirectoryMock) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserDirectoryMock) Block(ctx context.Context, blockerID, blockedID string) error {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Error(0)
}

func (m *UserDirectoryMock) IsBlocked(ctx context.Context, blockerID, senderID string) (bool, error) {
	args := m.Called(ctx, blockerID, senderID)
	return args.Bool(0), args.Error(1)
}

type GroupDirectoryMock struct {
	mock.Mock
}

func (m *GroupDirectoryMock) Create(ctx context.Context, groupName string, members []string) (models.Group, error) {
	args := m.Called(ctx, groupName, members)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupDirectoryMock) AddMember(ctx context.Context, groupID, userID string) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *GroupDirectoryMock) RemoveMember(ctx context.Context, groupID, userID string) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *GroupDirectoryMock) GetMembers(ctx context.Context, groupID string) ([]string, error) {
	args := m.Called(ctx, groupID)
	var members []string
	if val := args.Get(0); val != nil {
		members = val.([]string)
	}
	return members, args.Error(1)
}

type MessageStoreMock struct {
	mock.Mock
}

func (m *MessageStoreMock) Append(ctx context.Context, msg models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageStoreMock) ListForRecipient(ctx context.Context, userID string) ([]models.Message, error) {
	args := m.Called(ctx, userID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) SendDirect(ctx context.Context, senderID, recipientID, content, timestamp string) (models.Message, error) {
	args := m.Called(ctx, senderID, recipientID, content, timestamp)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *SenderMock) SendGroup(ctx context.Context, senderID, groupID, content, timestamp string) ([]models.Message, error) {
	args := m.Called(ctx, senderID, groupID, content, timestamp)
	var copies []models.Message
	if val := args.Get(0); val != nil {
		copies = val.([]models.Message)
	}
	return copies, args.Error(1)
}

// AuditPublisherMock stands in for the RabbitMQ publisher behind the
// audit emitter.
type AuditPublisherMock struct {
	mock.Mock
}

func (m *AuditPublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *AuditPublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ directory.UserDirectory = (*UserDirectoryMock)(nil)
var _ directory.GroupDirectory = (*GroupDirectoryMock)(nil)
var _ messagestore.MessageStore = (*MessageStoreMock)(nil)
var _ delivery.Sender = (*SenderMock)(nil)
var _ telemetry.Publisher = (*AuditPublisherMock)(nil)
