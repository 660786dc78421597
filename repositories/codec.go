package repositories

import (
	"fmt"
	"roomchat/domain"
	"roomchat/errors"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored in protobuf wire format. Field numbers are part of the
// on-disk format and must never be reused.
const (
	messageID      protowire.Number = 1
	messageRoom    protowire.Number = 2
	messageAuthor  protowire.Number = 3
	messageContent protowire.Number = 4
	messageAt      protowire.Number = 5

	roomID        protowire.Number = 1
	roomName      protowire.Number = 2
	roomCreatedBy protowire.Number = 3
	roomCreatedAt protowire.Number = 4

	presenceConnID   protowire.Number = 1
	presenceUsername protowire.Number = 2
	presenceRoom     protowire.Number = 3
	presenceOnline   protowire.Number = 4
	presenceLastSeen protowire.Number = 5
)

// marshalMessage omits the room field for legacy messages, so a decoded
// record keeps the "no room" information.
func marshalMessage(m domain.Message) []byte {
	var b []byte
	b = appendString(b, messageID, m.ID.String())
	if !m.Room.IsZero() {
		b = appendString(b, messageRoom, string(m.Room))
	}
	b = appendString(b, messageAuthor, m.Author)
	b = appendString(b, messageContent, m.Content)
	b = protowire.AppendTag(b, messageAt, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.CreatedAt.UnixNano()))
	return b
}

func unmarshalMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	err := consumeFields(b, func(num protowire.Number, str string, v uint64) error {
		switch num {
		case messageID:
			id, err := uuid.Parse(str)
			if err != nil {
				return err
			}
			m.ID = id
		case messageRoom:
			m.Room = domain.RoomID(str)
		case messageAuthor:
			m.Author = str
		case messageContent:
			m.Content = str
		case messageAt:
			m.CreatedAt = time.Unix(0, int64(v)).UTC()
		}
		return nil
	})
	return m, err
}

func marshalRoom(r domain.Room) []byte {
	var b []byte
	b = appendString(b, roomID, string(r.ID))
	b = appendString(b, roomName, r.Name)
	b = appendString(b, roomCreatedBy, r.CreatedBy)
	b = protowire.AppendTag(b, roomCreatedAt, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.CreatedAt.UnixNano()))
	return b
}

func unmarshalRoom(b []byte) (domain.Room, error) {
	var r domain.Room
	err := consumeFields(b, func(num protowire.Number, str string, v uint64) error {
		switch num {
		case roomID:
			r.ID = domain.RoomID(str)
		case roomName:
			r.Name = str
		case roomCreatedBy:
			r.CreatedBy = str
		case roomCreatedAt:
			r.CreatedAt = time.Unix(0, int64(v)).UTC()
		}
		return nil
	})
	return r, err
}

func marshalPresence(p domain.PresenceRecord) []byte {
	var b []byte
	b = appendString(b, presenceConnID, string(p.ConnID))
	b = appendString(b, presenceUsername, p.Username)
	b = appendString(b, presenceRoom, string(p.Room))
	b = protowire.AppendTag(b, presenceOnline, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(p.Online))
	b = protowire.AppendTag(b, presenceLastSeen, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.LastSeen.UnixNano()))
	return b
}

func unmarshalPresence(b []byte) (domain.PresenceRecord, error) {
	var p domain.PresenceRecord
	err := consumeFields(b, func(num protowire.Number, str string, v uint64) error {
		switch num {
		case presenceConnID:
			p.ConnID = domain.ConnID(str)
		case presenceUsername:
			p.Username = str
		case presenceRoom:
			p.Room = domain.RoomID(str)
		case presenceOnline:
			p.Online = protowire.DecodeBool(v)
		case presenceLastSeen:
			p.LastSeen = time.Unix(0, int64(v)).UTC()
		}
		return nil
	})
	return p, err
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// consumeFields walks a record and hands every string or varint field to fn.
// Unknown field types are skipped.
func consumeFields(b []byte, fn func(num protowire.Number, str string, v uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", errors.ErrCorruptedRecord, protowire.ParseError(n))
		}
		b = b[n:]
		switch typ {
		case protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", errors.ErrCorruptedRecord, protowire.ParseError(n))
			}
			if err := fn(num, s, 0); err != nil {
				return fmt.Errorf("%w: %v", errors.ErrCorruptedRecord, err)
			}
			b = b[n:]
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", errors.ErrCorruptedRecord, protowire.ParseError(n))
			}
			if err := fn(num, "", v); err != nil {
				return fmt.Errorf("%w: %v", errors.ErrCorruptedRecord, err)
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: %v", errors.ErrCorruptedRecord, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}
