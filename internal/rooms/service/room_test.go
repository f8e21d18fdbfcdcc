package service

import (
	"context"
	"io"
	"sync"
	"testing"

	roomserrors "karabook/internal/rooms/errors"
	"karabook/pkg/config"
	apperrors "karabook/pkg/errors"
	"karabook/pkg/logger"
	"karabook/pkg/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}

// memoryRoomRepo keeps rooms in a map with the same uniqueness semantics as
// the real collection.
type memoryRoomRepo struct {
	mu     sync.Mutex
	nextID int
	rooms  map[string]*model.Room
}

func newMemoryRoomRepo() *memoryRoomRepo {
	return &memoryRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *memoryRoomRepo) Create(ctx context.Context, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		if r.RoomNumber == room.RoomNumber {
			return roomserrors.ErrDuplicateNumber
		}
	}
	m.nextID++
	room.ID = testObjectID(m.nextID)
	clone := *room
	m.rooms[room.ID] = &clone
	return nil
}

func (m *memoryRoomRepo) FindByID(ctx context.Context, id string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *memoryRoomRepo) FindAll(ctx context.Context) ([]*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Room
	for _, r := range m.rooms {
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memoryRoomRepo) Update(ctx context.Context, id string, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return roomserrors.ErrNotFound
	}
	for otherID, r := range m.rooms {
		if otherID != id && r.RoomNumber == room.RoomNumber {
			return roomserrors.ErrDuplicateNumber
		}
	}
	clone := *room
	clone.ID = id
	m.rooms[id] = &clone
	return nil
}

func (m *memoryRoomRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return roomserrors.ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

func (m *memoryRoomRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rooms)), nil
}

func (m *memoryRoomRepo) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms = make(map[string]*model.Room)
	return nil
}

func (m *memoryRoomRepo) InsertMany(ctx context.Context, rooms []*model.Room) error {
	for _, room := range rooms {
		if err := m.Create(ctx, room); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryRoomRepo) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rooms[id]
	return ok, nil
}

func (m *memoryRoomRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*model.Room)
	for _, id := range ids {
		if r, ok := m.rooms[id]; ok {
			clone := *r
			out[id] = &clone
		}
	}
	return out, nil
}

func testObjectID(n int) string {
	const hexDigits = "0123456789abcdef"
	id := make([]byte, 24)
	for i := range id {
		id[i] = '0'
	}
	for i := 23; n > 0 && i >= 0; i-- {
		id[i] = hexDigits[n%16]
		n /= 16
	}
	return string(id)
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != code {
		t.Fatalf("expected error code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func TestCreateRoom(t *testing.T) {
	svc := NewRoomService(newMemoryRoomRepo(), testConfig())
	ctx := context.Background()

	room := &model.Room{RoomNumber: "  Room 12  ", Capacity: 8}
	if err := svc.Create(ctx, room); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if room.RoomNumber != "Room 12" {
		t.Errorf("expected room number to be trimmed, got %q", room.RoomNumber)
	}
	if room.Status != model.RoomAvailable {
		t.Errorf("expected default status %q, got %q", model.RoomAvailable, room.Status)
	}

	// Same number again is a conflict.
	assertAppCode(t, svc.Create(ctx, &model.Room{RoomNumber: "Room 12", Capacity: 4}), apperrors.CodeConflict)
}

func TestCreateRoom_Validation(t *testing.T) {
	svc := NewRoomService(newMemoryRoomRepo(), testConfig())
	ctx := context.Background()

	tests := []struct {
		name string
		room *model.Room
	}{
		{"missing number", &model.Room{Capacity: 5}},
		{"zero capacity", &model.Room{RoomNumber: "Room 1", Capacity: 0}},
		{"oversized capacity", &model.Room{RoomNumber: "Room 1", Capacity: 51}},
		{"bogus status", &model.Room{RoomNumber: "Room 1", Capacity: 5, Status: "closed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAppCode(t, svc.Create(ctx, tt.room), apperrors.CodeValidation)
		})
	}
}

func TestUpdateRoom(t *testing.T) {
	repo := newMemoryRoomRepo()
	svc := NewRoomService(repo, testConfig())
	ctx := context.Background()

	room := &model.Room{RoomNumber: "Room 1", Capacity: 6}
	if err := svc.Create(ctx, room); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	capacity := 9
	updated, err := svc.Update(ctx, room.ID, &model.RoomUpdate{Capacity: &capacity, Status: model.RoomMaintenance})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Capacity != 9 || updated.Status != model.RoomMaintenance {
		t.Errorf("update not applied: %+v", updated)
	}
	// Unchanged fields survive the merge.
	if updated.RoomNumber != "Room 1" {
		t.Errorf("expected room number preserved, got %q", updated.RoomNumber)
	}

	_, err = svc.Update(ctx, testObjectID(0x99), &model.RoomUpdate{Status: model.RoomAvailable})
	assertAppCode(t, err, apperrors.CodeNotFound)
}

func TestDeleteRoom(t *testing.T) {
	svc := NewRoomService(newMemoryRoomRepo(), testConfig())
	ctx := context.Background()

	room := &model.Room{RoomNumber: "Room 1", Capacity: 6}
	if err := svc.Create(ctx, room); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := svc.Delete(ctx, room.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAppCode(t, svc.Delete(ctx, room.ID), apperrors.CodeNotFound)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("populates an empty collection", func(t *testing.T) {
		repo := newMemoryRoomRepo()
		svc := NewRoomService(repo, testConfig())

		n, err := svc.Seed(ctx, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != len(defaultRooms) {
			t.Errorf("expected %d seeded rooms, got %d", len(defaultRooms), n)
		}

		rooms, err := svc.GetAll(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		byNumber := make(map[string]int)
		for _, r := range rooms {
			byNumber[r.RoomNumber] = r.Capacity
		}
		if byNumber["VIP Room"] != 10 {
			t.Errorf("expected VIP Room with capacity 10, got %d", byNumber["VIP Room"])
		}
		if byNumber["Room 6"] != 10 {
			t.Errorf("expected Room 6 with capacity 10, got %d", byNumber["Room 6"])
		}
	})

	t.Run("no-op when rooms exist", func(t *testing.T) {
		repo := newMemoryRoomRepo()
		svc := NewRoomService(repo, testConfig())

		if err := svc.Create(ctx, &model.Room{RoomNumber: "Custom", Capacity: 4}); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		n, err := svc.Seed(ctx, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected seed to be skipped, got %d inserts", n)
		}
	})

	t.Run("force resets the floor plan", func(t *testing.T) {
		repo := newMemoryRoomRepo()
		svc := NewRoomService(repo, testConfig())

		if err := svc.Create(ctx, &model.Room{RoomNumber: "Custom", Capacity: 4}); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		n, err := svc.Seed(ctx, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != len(defaultRooms) {
			t.Errorf("expected %d seeded rooms, got %d", len(defaultRooms), n)
		}

		rooms, err := svc.GetAll(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, r := range rooms {
			if r.RoomNumber == "Custom" {
				t.Error("expected pre-existing room to be cleared by force seed")
			}
		}
		if len(rooms) != len(defaultRooms) {
			t.Errorf("expected exactly the default floor plan, got %d rooms", len(rooms))
		}
	})
}
