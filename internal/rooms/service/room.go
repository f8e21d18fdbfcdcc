package service

import (
	"context"
	"errors"
	"fmt"

	roomserrors "karabook/internal/rooms/errors"
	"karabook/internal/rooms/repository"
	"karabook/pkg/config"
	apperrors "karabook/pkg/errors"
	"karabook/pkg/model"
	"karabook/pkg/sanitizer"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context) ([]*model.Room, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id string) error
	Seed(ctx context.Context, force bool) (int, error)
}

// defaultRooms is the venue's initial floor plan.
var defaultRooms = []model.Room{
	{RoomNumber: "Room 1", Capacity: 6, Status: model.RoomAvailable},
	{RoomNumber: "Room 2", Capacity: 7, Status: model.RoomAvailable},
	{RoomNumber: "Room 3", Capacity: 8, Status: model.RoomAvailable},
	{RoomNumber: "Room 4", Capacity: 6, Status: model.RoomAvailable},
	{RoomNumber: "Room 5", Capacity: 9, Status: model.RoomAvailable},
	{RoomNumber: "Room 6", Capacity: 10, Status: model.RoomAvailable},
	{RoomNumber: "Room 7", Capacity: 6, Status: model.RoomAvailable},
	{RoomNumber: "Room 8", Capacity: 8, Status: model.RoomAvailable},
	{RoomNumber: "Room 9", Capacity: 7, Status: model.RoomAvailable},
	{RoomNumber: "VIP Room", Capacity: 10, Status: model.RoomAvailable},
}

type roomService struct {
	repo repository.RoomRepository
	cfg  *config.Config
}

func NewRoomService(repo repository.RoomRepository, cfg *config.Config) RoomService {
	return &roomService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	room.RoomNumber = sanitizer.NormalizeRoomNumber(room.RoomNumber)
	if room.Status == "" {
		room.Status = model.RoomAvailable
	}
	if err := s.validate(room); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateNumber) {
			return apperrors.Conflict(roomserrors.ErrDuplicateNumber.Error())
		}
		s.cfg.Log.Error("Failed to create room", "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created", "id", room.ID, "room_number", room.RoomNumber)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id, "retrieve room")
	}
	return room, nil
}

func (s *roomService) GetAll(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms", "error", err)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id, "check room existence")
	}

	merged := *existing
	if updates.RoomNumber != "" {
		merged.RoomNumber = sanitizer.NormalizeRoomNumber(updates.RoomNumber)
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if err := s.validate(&merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateNumber) {
			return nil, apperrors.Conflict(roomserrors.ErrDuplicateNumber.Error())
		}
		return nil, translateRepoError(err, id, "update room")
	}

	s.cfg.Log.Info("Room updated", "id", id)
	return &merged, nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, id, "delete room")
	}

	s.cfg.Log.Info("Room deleted", "id", id)
	return nil
}

// Seed installs the default floor plan. Without force it only runs on an
// empty collection, so a fresh deployment self-populates but an operating
// venue is never silently reset.
func (s *roomService) Seed(ctx context.Context, force bool) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperrors.Internal("Failed to count rooms", err)
	}

	if count > 0 {
		if !force {
			return 0, nil
		}
		if err := s.repo.DeleteAll(ctx); err != nil {
			return 0, apperrors.Internal("Failed to clear rooms", err)
		}
	}

	rooms := make([]*model.Room, 0, len(defaultRooms))
	for i := range defaultRooms {
		room := defaultRooms[i]
		rooms = append(rooms, &room)
	}

	if err := s.repo.InsertMany(ctx, rooms); err != nil {
		return 0, apperrors.Internal("Failed to seed rooms", err)
	}

	s.cfg.Log.Info("Rooms seeded", "count", len(rooms), "forced", force)
	return len(rooms), nil
}

func (s *roomService) validate(room *model.Room) error {
	if room.RoomNumber == "" {
		return apperrors.Validation("Room validation failed", map[string]any{"error": "room_number is required"})
	}
	if room.Capacity < 1 || room.Capacity > 50 {
		return apperrors.Validation("Room validation failed", map[string]any{"error": "capacity must be between 1 and 50"})
	}
	if room.Status != model.RoomAvailable && room.Status != model.RoomMaintenance {
		return apperrors.Validation("Room validation failed", map[string]any{
			"error": fmt.Sprintf("status must be %q or %q", model.RoomAvailable, model.RoomMaintenance),
		})
	}
	return nil
}

func translateRepoError(err error, id string, action string) error {
	switch {
	case errors.Is(err, roomserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Room", id)
	case errors.Is(err, roomserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID format")
	default:
		return apperrors.Internal("Failed to "+action, err)
	}
}
