package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tamaralmogy/message-app/internal/delivery"
	"github.com/tamaralmogy/message-app/internal/directory"
	"github.com/tamaralmogy/message-app/internal/mocks"
	"github.com/tamaralmogy/message-app/internal/models"
	"github.com/tamaralmogy/message-app/internal/ws"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/messages", handler.SendDirect)
	r.POST("/groups/:group_id/messages", handler.SendGroup)
	r.GET("/messages/:user_id", handler.List)
	return r
}

func TestSendDirectSuccess(t *testing.T) {
	sender := new(mocks.SenderMock)
	handler := NewMessageHandler(sender, new(mocks.MessageStoreMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler)

	sender.On("SendDirect", mock.Anything, "u-1", "u-2", "hey", "").
		Return(models.Message{MessageID: "m-1", SenderID: "u-1", RecipientID: "u-2", Content: "hey"}, nil).Once()

	body := bytes.NewBufferString(`{"senderId":"u-1","recipientId":"u-2","content":"hey"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "m-1", resp["messageId"])
	sender.AssertExpectations(t)
}

func TestSendDirectBlocked(t *testing.T) {
	sender := new(mocks.SenderMock)
	handler := NewMessageHandler(sender, new(mocks.MessageStoreMock), nil, nil)
	router := setupMessageRouter(handler)

	sender.On("SendDirect", mock.Anything, "u-1", "u-2", "hey", "").
		Return(models.Message{}, delivery.ErrBlocked).Once()

	body := bytes.NewBufferString(`{"senderId":"u-1","recipientId":"u-2","content":"hey"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	sender.AssertExpectations(t)
}

func TestSendDirectMissingContent(t *testing.T) {
	handler := NewMessageHandler(new(mocks.SenderMock), new(mocks.MessageStoreMock), nil, nil)
	router := setupMessageRouter(handler)

	body := bytes.NewBufferString(`{"senderId":"u-1","recipientId":"u-2"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendGroupSuccess(t *testing.T) {
	sender := new(mocks.SenderMock)
	handler := NewMessageHandler(sender, new(mocks.MessageStoreMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler)

	copies := []models.Message{
		{MessageID: "m-9", SenderID: "u-1", RecipientID: "u-2", GroupID: "g-1", Content: "all"},
		{MessageID: "m-9", SenderID: "u-1", RecipientID: "u-3", GroupID: "g-1", Content: "all"},
	}
	sender.On("SendGroup", mock.Anything, "u-1", "g-1", "all", "").Return(copies, nil).Once()

	body := bytes.NewBufferString(`{"senderId":"u-1","content":"all"}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/g-1/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "m-9", resp["messageId"])
	sender.AssertExpectations(t)
}

func TestSendGroupNotFound(t *testing.T) {
	sender := new(mocks.SenderMock)
	handler := NewMessageHandler(sender, new(mocks.MessageStoreMock), nil, nil)
	router := setupMessageRouter(handler)

	sender.On("SendGroup", mock.Anything, "u-1", "missing", "all", "").
		Return(nil, directory.ErrGroupNotFound).Once()

	body := bytes.NewBufferString(`{"senderId":"u-1","content":"all"}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/missing/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	sender.AssertExpectations(t)
}

func TestSendGroupEmpty(t *testing.T) {
	sender := new(mocks.SenderMock)
	handler := NewMessageHandler(sender, new(mocks.MessageStoreMock), nil, nil)
	router := setupMessageRouter(handler)

	sender.On("SendGroup", mock.Anything, "u-1", "g-1", "all", "").
		Return(nil, delivery.ErrEmptyGroup).Once()

	body := bytes.NewBufferString(`{"senderId":"u-1","content":"all"}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/g-1/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	sender.AssertExpectations(t)
}

func TestSendGroupStorageError(t *testing.T) {
	sender := new(mocks.SenderMock)
	handler := NewMessageHandler(sender, new(mocks.MessageStoreMock), nil, nil)
	router := setupMessageRouter(handler)

	partial := []models.Message{{MessageID: "m-9", RecipientID: "u-2"}}
	sender.On("SendGroup", mock.Anything, "u-1", "g-1", "all", "").
		Return(partial, errors.New("write failed")).Once()

	body := bytes.NewBufferString(`{"senderId":"u-1","content":"all"}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/g-1/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	sender.AssertExpectations(t)
}

func TestListMessagesSuccess(t *testing.T) {
	store := new(mocks.MessageStoreMock)
	handler := NewMessageHandler(new(mocks.SenderMock), store, nil, nil)
	router := setupMessageRouter(handler)

	store.On("ListForRecipient", mock.Anything, "u-2").
		Return([]models.Message{{MessageID: "m-1", RecipientID: "u-2", Content: "hey"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/u-2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	require.Equal(t, "m-1", resp.Messages[0].MessageID)
	store.AssertExpectations(t)
}

func TestListMessagesEmpty(t *testing.T) {
	store := new(mocks.MessageStoreMock)
	handler := NewMessageHandler(new(mocks.SenderMock), store, nil, nil)
	router := setupMessageRouter(handler)

	store.On("ListForRecipient", mock.Anything, "u-9").Return([]models.Message{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/u-9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "No messages found for this user.", resp["message"])
	store.AssertExpectations(t)
}
