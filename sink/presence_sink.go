package sink

import (
	"context"
	"fmt"
	"log/slog"
	"roomchat/domain"
	"roomchat/domain/event"
	"roomchat/repositories"
)

// PresenceSink keeps the durable online/offline record in step with
// joins and disconnects. Room switches only update the room of the record.
type PresenceSink struct {
	repository repositories.IPresenceRepository
	log        *slog.Logger
}

func NewPresenceSink(repository repositories.IPresenceRepository, log *slog.Logger) PresenceSink {
	return PresenceSink{repository: repository, log: log}
}

func (p PresenceSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ParticipantJoined:
		return p.repository.MarkOnline(domain.PresenceRecord{
			ConnID:   evt.ConnID,
			Username: evt.Username,
			Room:     evt.Room,
			Online:   true,
			LastSeen: evt.At,
		})
	case event.ParticipantLeft:
		if !evt.Disconnected {
			return nil
		}
		return p.repository.MarkOffline(evt.ConnID, evt.At)
	default:
		p.log.Debug(fmt.Sprintf("Not implemented event : %T", evt))
		return nil
	}
}
