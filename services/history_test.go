package services

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"roomchat/domain"
	"roomchat/errors"
	"roomchat/mocks"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHistoryService_Limit_Coercion(t *testing.T) {
	req := require.New(t)
	history := NewHistoryService(nil, slog.Default(), 50, 200, time.Second)

	req.Equal(50, history.Limit(0))
	req.Equal(50, history.Limit(-3))
	req.Equal(10, history.Limit(10))
	req.Equal(200, history.Limit(5000))
}

func TestHistoryService_Recent_Passes_Coerced_Limit(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMessageRepository(ctrl)
	history := NewHistoryService(repository, slog.Default(), 50, 100, time.Second)

	// Given a store without messages for the room
	repository.EXPECT().GetMessages(domain.RoomID("r1"), nil, 100).Return(nil, nil).Times(1)

	// When asking for too many
	messages, err := history.Recent(context.Background(), "r1", 1000)

	// Then the cap applies and the result is an empty list
	req.NoError(err)
	req.NotNil(messages)
	req.Empty(messages)
}

func TestHistoryService_Before_Requires_Cursor(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMessageRepository(ctrl)
	history := NewHistoryService(repository, slog.Default(), 50, 100, time.Second)

	_, err := history.Before(context.Background(), "r1", nil, 10)
	req.ErrorIs(err, errors.ErrMissingCursor)

	cursor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repository.EXPECT().GetMessages(domain.RoomID(""), &cursor, 10).
		Return([]domain.Message{{Author: "old", Content: "x"}}, nil).Times(1)
	messages, err := history.Before(context.Background(), "", &cursor, 10)
	req.NoError(err)
	req.Len(messages, 1)
}

func TestHistoryService_Read_Failure_Returns_Empty(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMessageRepository(ctrl)
	history := NewHistoryService(repository, slog.Default(), 50, 100, time.Second)

	repository.EXPECT().GetMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.ErrStoreUnavailable).Times(1)

	messages, err := history.Recent(context.Background(), "", 0)

	req.ErrorIs(err, errors.ErrStoreUnavailable)
	req.Equal([]domain.Message{}, messages)
}

func TestHistoryService_Store_Timeout(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMessageRepository(ctrl)
	history := NewHistoryService(repository, slog.Default(), 50, 100, 20*time.Millisecond)

	// Given a store slower than the timeout
	repository.EXPECT().StoreMessage(gomock.Any()).DoAndReturn(func(m domain.Message) (domain.Message, error) {
		time.Sleep(200 * time.Millisecond)
		return m, nil
	}).Times(1)

	// When appending
	message, err := history.Append(context.Background(), "alice", "hello", "r1")

	// Then the caller gets a timeout and the unpersisted message
	req.ErrorIs(err, errors.ErrStoreTimeout)
	req.Equal("hello", message.Content)
	req.True(message.CreatedAt.IsZero())
	time.Sleep(250 * time.Millisecond)
}

func TestHistoryService_Append(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMessageRepository(ctrl)
	history := NewHistoryService(repository, slog.Default(), 50, 100, time.Second)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Given a store stamping messages
	repository.EXPECT().StoreMessage(gomock.Any()).DoAndReturn(func(m domain.Message) (domain.Message, error) {
		m.CreatedAt = at
		return m, nil
	}).Times(1)

	// When appending with no room and padded text
	message, err := history.Append(context.Background(), " alice ", " hello ", "")

	// Then the message is trimmed and resolved to global
	req.NoError(err)
	req.Equal("alice", message.Author)
	req.Equal("hello", message.Content)
	req.Equal(domain.GlobalRoom, message.Room)
	req.Equal(at, message.CreatedAt)

	// Invalid input never reaches the store
	_, err = history.Append(context.Background(), "alice", "   ", "")
	req.ErrorIs(err, errors.ErrEmptyMessage)
	_, err = history.Append(context.Background(), "", "hi", "")
	req.ErrorIs(err, errors.ErrEmptyAuthor)
}

func TestParseCursor(t *testing.T) {
	req := require.New(t)

	at, err := ParseCursor("2026-03-01T12:00:00.123456789Z")
	req.NoError(err)
	req.Equal(123456789, at.Nanosecond())

	at, err = ParseCursor("1772366400000")
	req.NoError(err)
	req.Equal(int64(1772366400000), at.UnixMilli())

	_, err = ParseCursor(" ")
	req.ErrorIs(err, errors.ErrMissingCursor)

	_, err = ParseCursor("yesterday")
	req.True(stdErrors.Is(err, errors.ErrInvalidCursor))
}
