//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=../mocks/mock_history_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"roomchat/domain"
	"roomchat/errors"
	"roomchat/repositories"
	"strconv"
	"strings"
	"time"
)

const DefaultHistoryLimit = 50

type IHistoryService interface {
	Recent(ctx context.Context, room domain.RoomID, limit int) ([]domain.Message, error)
	Before(ctx context.Context, room domain.RoomID, cursor *time.Time, limit int) ([]domain.Message, error)
	Append(ctx context.Context, author, text string, room domain.RoomID) (domain.Message, error)
}

// HistoryService is the only path from the session layer to the message store.
// Reads return messages oldest first. An empty room means the global scope,
// legacy records included.
type HistoryService struct {
	repository   repositories.IMessageRepository
	log          *slog.Logger
	defaultLimit int
	maxLimit     int
	storeTimeout time.Duration
}

func NewHistoryService(repository repositories.IMessageRepository, log *slog.Logger,
	defaultLimit, maxLimit int, storeTimeout time.Duration) *HistoryService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultHistoryLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &HistoryService{
		repository:   repository,
		log:          log,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		storeTimeout: storeTimeout,
	}
}

// Limit coerces a caller limit to a positive value no larger than the cap.
func (h *HistoryService) Limit(limit int) int {
	if limit <= 0 {
		return h.defaultLimit
	}
	return min(limit, h.maxLimit)
}

func (h *HistoryService) Recent(ctx context.Context, room domain.RoomID, limit int) ([]domain.Message, error) {
	return h.fetch(ctx, room, nil, limit)
}

func (h *HistoryService) Before(ctx context.Context, room domain.RoomID, cursor *time.Time, limit int) ([]domain.Message, error) {
	if cursor == nil {
		return nil, errors.ErrMissingCursor
	}
	return h.fetch(ctx, room, cursor, limit)
}

func (h *HistoryService) fetch(ctx context.Context, room domain.RoomID, cursor *time.Time, limit int) ([]domain.Message, error) {
	limit = h.Limit(limit)
	messages, err := withTimeout(ctx, h.storeTimeout, func() ([]domain.Message, error) {
		return h.repository.GetMessages(room, cursor, limit)
	})
	if err != nil {
		h.log.Warn("History read failed", "room", room, "error", err)
		return []domain.Message{}, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// Append validates and persists one message. The store assigns the
// timestamp. There is no retry: the caller decides what a failure means.
func (h *HistoryService) Append(ctx context.Context, author, text string, room domain.RoomID) (domain.Message, error) {
	message, err := domain.NewMessage(author, text, room.OrGlobal())
	if err != nil {
		return domain.Message{}, err
	}
	stored, err := withTimeout(ctx, h.storeTimeout, func() (domain.Message, error) {
		return h.repository.StoreMessage(message)
	})
	if err != nil {
		h.log.Warn("Message not persisted", "room", message.Room, "author", message.Author, "error", err)
		return message, err
	}
	return stored, nil
}

// withTimeout bounds a store call. The call keeps running in the background
// when the deadline expires; its result is discarded.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := fn()
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return zero, errors.ErrStoreTimeout
		}
		return zero, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, ctx.Err())
	}
}

// ParseCursor reads a pagination cursor. RFC 3339 timestamps (with or
// without fraction) and Unix milliseconds are accepted.
func ParseCursor(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.ErrMissingCursor
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", errors.ErrInvalidCursor, raw)
}
