//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"roomchat/domain"
	"roomchat/errors"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	roomMessagePrefix   = "msg:r:"
	legacyMessagePrefix = "msg:l:"
)

// latestKeyTime is the last instant a key timestamp can encode.
var latestKeyTime = time.Unix(0, math.MaxInt64)

type IMessageRepository interface {
	StoreMessage(message domain.Message) (domain.Message, error)
	GetMessages(room domain.RoomID, before *time.Time, limit int) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger

	mu   sync.Mutex
	last int64 // last assigned timestamp, in nanoseconds
	now  func() time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log, now: time.Now}
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:r:{hex(room)}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Keep a room prefix from matching another room whose id extends it.
//
// Messages without a room are legacy records, stored under "msg:l:".
// A zero CreatedAt is replaced by a store timestamp, strictly greater than
// every timestamp this repository handed out before.
func (m *MessageRepository) StoreMessage(message domain.Message) (domain.Message, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = m.nextTimestamp()
	}
	message.CreatedAt = message.CreatedAt.UTC()

	key := messageKey(message)
	err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, marshalMessage(message))
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return message, nil
}

// GetMessages returns at most limit messages older than before (all of them
// when before is nil), oldest first.
// An empty room selects the global scope: records of the "global" room plus
// legacy records without any room.
func (m *MessageRepository) GetMessages(room domain.RoomID, before *time.Time, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	prefixes := [][]byte{roomPrefix(room)}
	if room.IsZero() {
		prefixes = [][]byte{roomPrefix(domain.GlobalRoom), []byte(legacyMessagePrefix)}
	}

	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		for _, prefix := range prefixes {
			found, err := m.scan(txn, prefix, before, limit)
			if err != nil {
				return err
			}
			messages = append(messages, found...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	// Newest first, so the union of two prefixes can be truncated.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	if len(messages) > limit {
		messages = messages[:limit]
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// scan walks one prefix backwards, starting right below the cursor.
func (m *MessageRepository) scan(txn *badger.Txn, prefix []byte, before *time.Time, limit int) ([]domain.Message, error) {
	options := badger.DefaultIteratorOptions
	options.Reverse = true
	options.Prefix = prefix
	it := txn.NewIterator(options)
	defer it.Close()

	var seekKey []byte
	switch {
	case before == nil, before.After(latestKeyTime):
		// Past every timestamp of the prefix
		seekKey = append(bytes.Clone(prefix), 0xFF)
	default:
		if !before.After(time.Unix(0, 0)) {
			return nil, nil
		}
		// Keys at exactly the cursor are longer than the seek key, so a
		// reverse seek lands on the first strictly older one.
		seekKey = append(bytes.Clone(prefix), []byte(fmt.Sprintf("%019d", before.UnixNano()))...)
	}

	var messages []domain.Message
	for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
		if len(messages) == limit {
			m.log.Debug(fmt.Sprintf("Maximum of %d message reached", limit))
			break
		}
		item := it.Item()
		err := item.Value(func(value []byte) error {
			message, err := unmarshalMessage(value)
			if err != nil {
				return err
			}
			messages = append(messages, message)
			return nil
		})
		if err != nil {
			m.log.Warn("Skipping unreadable message", "key", string(item.Key()), "error", err)
			continue
		}
	}
	return messages, nil
}

func (m *MessageRepository) nextTimestamp() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := m.now().UnixNano()
	if ts <= m.last {
		ts = m.last + 1
	}
	m.last = ts
	return time.Unix(0, ts).UTC()
}

func roomPrefix(room domain.RoomID) []byte {
	if room.IsZero() {
		return []byte(legacyMessagePrefix)
	}
	return []byte(roomMessagePrefix + hex.EncodeToString([]byte(room)) + ":")
}

func messageKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s",
		roomPrefix(message.Room),
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

// Ping reports whether the underlying database still accepts operations.
func (m *MessageRepository) Ping() error {
	if m.db.IsClosed() {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, badger.ErrDBClosed)
	}
	return nil
}
