//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"fmt"
	"roomchat/domain"
	"roomchat/errors"

	"github.com/dgraph-io/badger/v4"
)

const roomKeyPrefix = "room:"

type IRoomRepository interface {
	CreateRoom(room domain.Room) error
	GetRoom(id domain.RoomID) (domain.Room, error)
}

type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// CreateRoom persists a room, failing with ErrRoomAlreadyExists when the id
// is taken. The existence check and the write share one transaction.
func (r *RoomRepository) CreateRoom(room domain.Room) error {
	key := []byte(roomKeyPrefix + string(room.ID))
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return errors.ErrRoomAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, marshalRoom(room))
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errors.ErrRoomAlreadyExists):
		return err
	case errors.Is(err, badger.ErrConflict):
		return errors.ErrRoomAlreadyExists
	default:
		return fmt.Errorf("%w: %v", errors.ErrDirectoryUnavailable, err)
	}
}

// GetRoom returns ErrRoomNotFound for an unknown id and
// ErrDirectoryUnavailable when the store cannot answer.
func (r *RoomRepository) GetRoom(id domain.RoomID) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(roomKeyPrefix + string(id)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			room, err = unmarshalRoom(val)
			return err
		})
	})
	switch {
	case err == nil:
		return room, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return domain.Room{}, errors.ErrRoomNotFound
	default:
		return domain.Room{}, fmt.Errorf("%w: %v", errors.ErrDirectoryUnavailable, err)
	}
}
