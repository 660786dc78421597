package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"roomchat/domain"
	"roomchat/errors"
)

// inboundFrame is what clients send: {"event": "<name>", "data": <payload>}.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinPayload struct {
	Username string `json:"username"`
}

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type chatMessagePayload struct {
	RoomID string `json:"roomId"`
	User   string `json:"user"`
	Text   string `json:"text"`
}

type legacyMessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// DecodeCommand turns one websocket text frame into a command.
// Disconnect is never decoded: it comes from the transport closing.
func DecodeCommand(raw []byte) (domain.Command, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}

	switch domain.CommandKind(frame.Event) {
	case domain.JoinKind:
		username, err := decodeJoin(frame.Data)
		if err != nil {
			return nil, err
		}
		return domain.JoinCommand{Username: username}, nil
	case domain.JoinRoomKind:
		var payload joinRoomPayload
		if err := decodeData(frame.Data, &payload); err != nil {
			return nil, err
		}
		return domain.JoinRoomCommand{Room: domain.RoomID(payload.RoomID), Username: payload.Username}, nil
	case domain.SendMessageKind:
		var payload chatMessagePayload
		if err := decodeData(frame.Data, &payload); err != nil {
			return nil, err
		}
		return domain.SendMessageCommand{Room: domain.RoomID(payload.RoomID), User: payload.User, Content: payload.Text}, nil
	case domain.LegacySendMessageKind:
		var payload legacyMessagePayload
		if err := decodeData(frame.Data, &payload); err != nil {
			return nil, err
		}
		return domain.LegacySendMessageCommand{Username: payload.Username, Content: payload.Message}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, frame.Event)
	}
}

// decodeJoin accepts the bare name string as well as {"username": name}.
func decodeJoin(data json.RawMessage) (string, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return name, nil
	}
	var payload joinPayload
	if err := decodeData(data, &payload); err != nil {
		return "", err
	}
	return payload.Username, nil
}

func decodeData(data json.RawMessage, target any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: missing data", errors.ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}
