package service

import (
	"context"
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "karabook/internal/bookings/errors"
	"karabook/internal/bookings/repository"
	"karabook/internal/bookings/validator"
	"karabook/pkg/config"
	mongotx "karabook/pkg/db/mongo"
	"karabook/pkg/logger"
	"karabook/pkg/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Log:          logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
		DayStartHour: config.DefaultDayStartHour,
		DayEndHour:   config.DefaultDayEndHour,
		SlotMinutes:  config.DefaultSlotMinutes,
	}
}

// duplicateKeyError mimics the storage layer's uniqueness violation.
func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}
}

// mockBookingRepo is a func-field stub: each test plugs in only the calls it
// expects.
type mockBookingRepo struct {
	CreateFunc           func(ctx context.Context, booking *model.Booking) error
	FindByIDFunc         func(ctx context.Context, id string) (*model.Booking, error)
	FindForAdmissionFunc func(ctx context.Context, roomID string, date time.Time, excludeID string) ([]*model.Booking, error)
	FindAllFunc          func(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, error)
	CountFunc            func(ctx context.Context, filter repository.Filter) (int64, error)
	ReplaceFunc          func(ctx context.Context, id string, booking *model.Booking) error
	UpdateStatusFunc     func(ctx context.Context, id string, status string) error
	DeleteFunc           func(ctx context.Context, id string) error
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return m.CreateFunc(ctx, booking)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockBookingRepo) FindForAdmission(ctx context.Context, roomID string, date time.Time, excludeID string) ([]*model.Booking, error) {
	return m.FindForAdmissionFunc(ctx, roomID, date, excludeID)
}

func (m *mockBookingRepo) FindAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, error) {
	return m.FindAllFunc(ctx, filter, limit, offset)
}

func (m *mockBookingRepo) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	return m.CountFunc(ctx, filter)
}

func (m *mockBookingRepo) Replace(ctx context.Context, id string, booking *model.Booking) error {
	return m.ReplaceFunc(ctx, id, booking)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	return m.UpdateStatusFunc(ctx, id, status)
}

func (m *mockBookingRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

// memoryBookingRepo is a stateful in-memory store for scenario tests that
// exercise the full admission flow (create, conflict, cancel, retry).
type memoryBookingRepo struct {
	mu       sync.Mutex
	nextID   int
	bookings map[string]*model.Booking
}

func newMemoryBookingRepo() *memoryBookingRepo {
	return &memoryBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (m *memoryBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	booking.ID = objectIDLike(m.nextID)
	clone := *booking
	m.bookings[booking.ID] = &clone
	return nil
}

func (m *memoryBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (m *memoryBookingRepo) FindForAdmission(ctx context.Context, roomID string, date time.Time, excludeID string) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.RoomID != roomID || !model.SameDate(b.Date, date) {
			continue
		}
		if b.Status == config.Cancelled || b.ID == excludeID {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memoryBookingRepo) FindAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memoryBookingRepo) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.bookings)), nil
}

func (m *memoryBookingRepo) Replace(ctx context.Context, id string, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return bookingserrors.ErrNotFound
	}
	clone := *booking
	clone.ID = id
	m.bookings[id] = &clone
	return nil
}

func (m *memoryBookingRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.Status = status
	return nil
}

func (m *memoryBookingRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return bookingserrors.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *memoryBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

// memoryLockRepo reproduces the advisory lock's uniqueness semantics in
// memory so concurrency tests race against real contention.
type memoryLockRepo struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

func newMemoryLockRepo() *memoryLockRepo {
	return &memoryLockRepo{locks: make(map[string]struct{})}
}

func (m *memoryLockRepo) Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[lock.ID]; held {
		return nil, duplicateKeyError()
	}
	m.locks[lock.ID] = struct{}{}
	return lock, nil
}

func (m *memoryLockRepo) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockID)
	return nil
}

type mockRoomSource struct {
	ExistsFunc    func(ctx context.Context, id string) (bool, error)
	FindByIDsFunc func(ctx context.Context, ids []string) (map[string]*model.Room, error)
}

func (m *mockRoomSource) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc == nil {
		return true, nil
	}
	return m.ExistsFunc(ctx, id)
}

func (m *mockRoomSource) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Room, error) {
	if m.FindByIDsFunc == nil {
		return map[string]*model.Room{}, nil
	}
	return m.FindByIDsFunc(ctx, ids)
}

type mockCustomerSource struct {
	ExistsFunc    func(ctx context.Context, id string) (bool, error)
	FindByIDsFunc func(ctx context.Context, ids []string) (map[string]*model.User, error)
}

func (m *mockCustomerSource) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc == nil {
		return true, nil
	}
	return m.ExistsFunc(ctx, id)
}

func (m *mockCustomerSource) FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	if m.FindByIDsFunc == nil {
		return map[string]*model.User{}, nil
	}
	return m.FindByIDsFunc(ctx, ids)
}

// objectIDLike produces a valid 24-char hex id from a small counter.
func objectIDLike(n int) string {
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

func newTestValidator() *validator.BookingValidator {
	return validator.NewBookingValidator(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))
}
