package repositories

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Record is a decoded store entry, for inspection tools.
type Record struct {
	Key    string
	Kind   string
	Room   string
	At     string
	Detail string
}

// DescribeRecord decodes any key written by the repositories of this package.
func DescribeRecord(key string, value []byte) (Record, error) {
	record := Record{Key: key, Kind: "RAW", Detail: fmt.Sprintf("%d bytes", len(value))}
	switch {
	case strings.HasPrefix(key, roomMessagePrefix), strings.HasPrefix(key, legacyMessagePrefix):
		message, err := unmarshalMessage(value)
		if err != nil {
			return record, err
		}
		record.Kind = "MESSAGE"
		record.Room = string(message.EffectiveRoom())
		if message.Room.IsZero() {
			record.Kind = "LEGACY"
		}
		record.At = message.CreatedAt.Format("2006-01-02 15:04:05.000")
		record.Detail = fmt.Sprintf("%s: %s", message.Author, message.Content)
	case strings.HasPrefix(key, roomKeyPrefix):
		room, err := unmarshalRoom(value)
		if err != nil {
			return record, err
		}
		record.Kind = "ROOM"
		record.Room = string(room.ID)
		record.At = room.CreatedAt.Format("2006-01-02 15:04:05")
		record.Detail = fmt.Sprintf("%q by %s", room.Name, room.CreatedBy)
	case strings.HasPrefix(key, presenceKeyPrefix):
		presence, err := unmarshalPresence(value)
		if err != nil {
			return record, err
		}
		record.Kind = "PRESENCE"
		record.Room = string(presence.Room)
		record.At = presence.LastSeen.Format("2006-01-02 15:04:05")
		record.Detail = fmt.Sprintf("%s online=%t", presence.Username, presence.Online)
	}
	return record, nil
}

// ScanRecords walks every key under prefix in key order.
func ScanRecords(db *badger.DB, prefix string, fn func(Record, error)) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			err := item.Value(func(value []byte) error {
				fn(DescribeRecord(key, value))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
