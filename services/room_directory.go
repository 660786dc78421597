//go:generate go run go.uber.org/mock/mockgen -source=room_directory.go -destination=../mocks/mock_room_directory.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"roomchat/domain"
	"roomchat/errors"
	"roomchat/repositories"
	"strings"
	"time"

	"github.com/samber/lo"
)

const maxTokenAttempts = 5

type IRoomDirectory interface {
	Create(ctx context.Context, name, createdBy string) (domain.Room, error)
	Lookup(ctx context.Context, id domain.RoomID) domain.LookupResult
	InviteLink(id domain.RoomID) string
}

type RoomDirectory struct {
	repository repositories.IRoomRepository
	log        *slog.Logger
	baseURL    string
	timeout    time.Duration
	now        func() time.Time
	token      func() string
}

func NewRoomDirectory(repository repositories.IRoomRepository, log *slog.Logger, baseURL string, timeout time.Duration) *RoomDirectory {
	return &RoomDirectory{
		repository: repository,
		log:        log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		now:        time.Now,
		token: func() string {
			return lo.RandomString(domain.RoomTokenLength, lo.AlphanumericCharset)
		},
	}
}

// Create registers a room under a fresh 10-character token.
func (d *RoomDirectory) Create(ctx context.Context, name, createdBy string) (domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Room{}, errors.ErrEmptyRoomName
	}
	createdBy = strings.TrimSpace(createdBy)
	if createdBy == "" {
		createdBy = domain.DefaultCreator
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		room := domain.Room{
			ID:        domain.RoomID(d.token()),
			Name:      name,
			CreatedBy: createdBy,
			CreatedAt: d.now().UTC(),
		}
		_, err := withTimeout(ctx, d.timeout, func() (struct{}, error) {
			return struct{}{}, d.repository.CreateRoom(room)
		})
		switch {
		case err == nil:
			d.log.Info("Room created", "room", room.ID, "name", room.Name, "created_by", room.CreatedBy)
			return room, nil
		case errors.Is(err, errors.ErrRoomAlreadyExists):
			d.log.Debug("Room token collision, retrying", "room", room.ID)
			continue
		case errors.Is(err, errors.ErrDirectoryUnavailable):
			return domain.Room{}, err
		default:
			return domain.Room{}, fmt.Errorf("%w: %v", errors.ErrDirectoryUnavailable, err)
		}
	}
	return domain.Room{}, errors.ErrRoomTokenExhausted
}

// Lookup never fails: the outcome is carried by the result status and the
// caller picks the fallback policy.
func (d *RoomDirectory) Lookup(ctx context.Context, id domain.RoomID) domain.LookupResult {
	if id == domain.GlobalRoom {
		return domain.Found(domain.Room{ID: domain.GlobalRoom, Name: "Global", CreatedBy: domain.DefaultCreator})
	}
	room, err := withTimeout(ctx, d.timeout, func() (domain.Room, error) {
		return d.repository.GetRoom(id)
	})
	switch {
	case err == nil:
		return domain.Found(room)
	case errors.Is(err, errors.ErrRoomNotFound):
		return domain.NotFound()
	default:
		d.log.Warn("Room directory unavailable", "room", id, "error", err)
		return domain.Unavailable()
	}
}

func (d *RoomDirectory) InviteLink(id domain.RoomID) string {
	return fmt.Sprintf("%s/room/%s", d.baseURL, id)
}
