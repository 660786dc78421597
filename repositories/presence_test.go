package repositories

import (
	"roomchat/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPresenceRepository_Online_Then_Offline(t *testing.T) {
	req := require.New(t)
	repository := NewPresenceRepository(openDB(t))
	joinedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	leftAt := joinedAt.Add(time.Hour)

	// Given a connection marked online in r1
	req.NoError(repository.MarkOnline(domain.PresenceRecord{
		ConnID: "c1", Username: "alice", Room: "r1", LastSeen: joinedAt,
	}))
	record, ok, err := repository.GetPresence("c1")
	req.NoError(err)
	req.True(ok)
	req.True(record.Online)

	// When it goes offline
	req.NoError(repository.MarkOffline("c1", leftAt))

	// Then identity and room are kept and last seen moves
	record, ok, err = repository.GetPresence("c1")
	req.NoError(err)
	req.True(ok)
	req.Equal(domain.PresenceRecord{
		ConnID: "c1", Username: "alice", Room: "r1", Online: false, LastSeen: leftAt,
	}, record)
}

func TestPresenceRepository_Offline_Without_Record_Writes_Nothing(t *testing.T) {
	req := require.New(t)
	repository := NewPresenceRepository(openDB(t))

	req.NoError(repository.MarkOffline("ghost", time.Now()))

	_, ok, err := repository.GetPresence("ghost")
	req.NoError(err)
	req.False(ok)
}
