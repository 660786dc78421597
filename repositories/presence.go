//go:generate go run go.uber.org/mock/mockgen -source=presence.go -destination=../mocks/mock_presence_repository.go -package=mocks
package repositories

import (
	"fmt"
	"roomchat/domain"
	"roomchat/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const presenceKeyPrefix = "presence:"

type IPresenceRepository interface {
	MarkOnline(record domain.PresenceRecord) error
	MarkOffline(connID domain.ConnID, at time.Time) error
	GetPresence(connID domain.ConnID) (domain.PresenceRecord, bool, error)
}

// PresenceRepository keeps the last known online state of every connection.
type PresenceRepository struct {
	db *badger.DB
}

func NewPresenceRepository(db *badger.DB) *PresenceRepository {
	return &PresenceRepository{db: db}
}

func (p *PresenceRepository) MarkOnline(record domain.PresenceRecord) error {
	record.Online = true
	record.LastSeen = record.LastSeen.UTC()
	err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(presenceKey(record.ConnID), marshalPresence(record))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return nil
}

// MarkOffline flips an existing record. A connection that never went
// online has no record and nothing is written.
func (p *PresenceRepository) MarkOffline(connID domain.ConnID, at time.Time) error {
	err := p.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(presenceKey(connID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		record, err := unmarshalPresence(val)
		if err != nil {
			return err
		}
		record.Online = false
		record.LastSeen = at.UTC()
		return txn.Set(presenceKey(connID), marshalPresence(record))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return nil
}

func (p *PresenceRepository) GetPresence(connID domain.ConnID) (domain.PresenceRecord, bool, error) {
	var record domain.PresenceRecord
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(presenceKey(connID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = unmarshalPresence(val)
			return err
		})
	})
	switch {
	case err == nil:
		return record, true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return domain.PresenceRecord{}, false, nil
	default:
		return domain.PresenceRecord{}, false, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
}

func presenceKey(connID domain.ConnID) []byte {
	return []byte(presenceKeyPrefix + string(connID))
}
