package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "karabook/internal/bookings/errors"
	"karabook/internal/bookings/repository"
	"karabook/internal/bookings/validator"
	"karabook/pkg/config"
	apperrors "karabook/pkg/errors"
	"karabook/pkg/events"
	"karabook/pkg/model"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, int64, error)
	GetAllExpanded(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.BookingView, int64, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Booking, error)
	Reschedule(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	CanAdmit(ctx context.Context, roomID string, date time.Time, startTime, endTime, excludeID string) (bool, error)
	AvailableSlots(ctx context.Context, roomID string, date time.Time) ([]model.Slot, error)
}

// RoomSource and CustomerSource are the narrow views of the room and customer
// stores the admission service needs: existence checks on create, batch
// lookups when expanding references.
type RoomSource interface {
	Exists(ctx context.Context, id string) (bool, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Room, error)
}

type CustomerSource interface {
	Exists(ctx context.Context, id string) (bool, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	rooms     RoomSource
	customers CustomerSource
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	rooms RoomSource,
	customers CustomerSource,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		customers: customers,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)
	if err := s.validate(booking); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, booking); err != nil {
		return err
	}

	// Advisory lock serializes concurrent admissions for the same slot; the
	// loser of the race gets a conflict instead of a silent double booking.
	lockID, err := s.acquireSlotLock(ctx, booking.RoomID, booking.Date, booking.StartTime)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, booking, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			// A uniqueness violation here means the storage layer enforced
			// the invariant for us; report it as the same slot conflict.
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict(bookingserrors.ErrSlotConflict.Error())
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return err
	}

	s.publishBookingEvent(ctx, events.BookingCreated, booking)
	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"date", booking.Date.Format(time.DateOnly),
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id, "retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, int64, error) {
	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to count bookings", "error", err)
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	bookings, err := s.repo.FindAll(ctx, filter, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}

	return bookings, count, nil
}

func (s *bookingService) GetAllExpanded(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.BookingView, int64, error) {
	bookings, count, err := s.GetAll(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.expand(ctx, bookings)
	if err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, status string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if status != config.Booked && status != config.Completed && status != config.Cancelled {
		return nil, apperrors.InvalidInput(fmt.Sprintf("status must be one of %q, %q, %q", config.Booked, config.Completed, config.Cancelled))
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id, "check booking existence")
	}

	// The only transitions are booked->completed and booked->cancelled;
	// completed and cancelled are terminal, and nothing re-opens a booking.
	if existing.Status != config.Booked || status == config.Booked {
		return nil, apperrors.Conflict(bookingserrors.ErrInvalidTransition.Error()).WithDetails(map[string]any{
			"from": existing.Status,
			"to":   status,
		})
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, translateRepoError(err, id, "update booking status")
	}
	existing.Status = status

	switch status {
	case config.Cancelled:
		s.publishBookingEvent(ctx, events.BookingCancelled, existing)
	case config.Completed:
		s.publishBookingEvent(ctx, events.BookingCompleted, existing)
	}

	s.cfg.Log.Info("Booking status updated", "id", id, "status", status)
	return existing, nil
}

func (s *bookingService) Reschedule(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id, "check booking existence")
	}
	if existing.Status != config.Booked {
		return nil, apperrors.Conflict("only booked bookings can be rescheduled").WithDetails(map[string]any{
			"status": existing.Status,
		})
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	if err := s.validate(merged); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, merged); err != nil {
		return nil, err
	}

	lockID, err := s.acquireSlotLock(ctx, merged.RoomID, merged.Date, merged.StartTime)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The booking being moved must not conflict with its own old slot.
		if err := s.verifyNoOverlap(sessCtx, merged, id); err != nil {
			return err
		}
		if err := s.repo.Replace(sessCtx, id, merged); err != nil {
			return translateRepoError(err, id, "update booking")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reschedule booking", "id", id, "error", err)
		return nil, err
	}

	merged.ID = id
	s.cfg.Log.Info("Booking rescheduled", "id", id,
		"room_id", merged.RoomID,
		"date", merged.Date.Format(time.DateOnly),
		"start_time", merged.StartTime,
	)
	return merged, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	// Administrative removal: the record disappears, so no admission check.
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, id, "delete booking")
	}

	s.cfg.Log.Info("Booking deleted", "id", id)
	return nil
}

func (s *bookingService) CanAdmit(ctx context.Context, roomID string, date time.Time, startTime, endTime, excludeID string) (bool, error) {
	if roomID == "" {
		return false, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if !validator.IsWallClock(startTime) || !validator.IsWallClock(endTime) {
		return false, apperrors.InvalidInput("start_time and end_time must be zero-padded 24-hour HH:MM times")
	}
	if startTime >= endTime {
		return false, apperrors.InvalidInput(bookingserrors.ErrInvalidTimeRange.Error())
	}

	existing, err := s.repo.FindForAdmission(ctx, roomID, date, excludeID)
	if err != nil {
		return false, apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if overlaps(b.StartTime, b.EndTime, startTime, endTime) {
			return false, nil
		}
	}
	return true, nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = config.Booked
	}
	if !b.Date.IsZero() {
		b.Date = model.DateOnly(b.Date)
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) checkReferences(ctx context.Context, booking *model.Booking) error {
	roomExists, err := s.rooms.Exists(ctx, booking.RoomID)
	if err != nil {
		return apperrors.Internal("Failed to check room existence", err)
	}
	if !roomExists {
		return apperrors.InvalidInput(fmt.Sprintf("unknown room: %s", booking.RoomID))
	}

	customerExists, err := s.customers.Exists(ctx, booking.CustomerID)
	if err != nil {
		return apperrors.Internal("Failed to check customer existence", err)
	}
	if !customerExists {
		return apperrors.InvalidInput(fmt.Sprintf("unknown customer: %s", booking.CustomerID))
	}
	return nil
}

func (s *bookingService) mergeUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.RoomID != "" {
		merged.RoomID = updates.RoomID
	}
	if updates.CustomerID != "" {
		merged.CustomerID = updates.CustomerID
	}
	if updates.Date != nil {
		merged.Date = model.DateOnly(*updates.Date)
	}
	if updates.StartTime != "" {
		merged.StartTime = updates.StartTime
	}
	if updates.EndTime != "" {
		merged.EndTime = updates.EndTime
	}

	return &merged
}

// verifyNoOverlap enforces the no-overlap invariant inside the admission
// transaction. Intervals are half-open, so a booking may start exactly when
// another ends.
func (s *bookingService) verifyNoOverlap(ctx context.Context, booking *model.Booking, excludeID string) error {
	existing, err := s.repo.FindForAdmission(ctx, booking.RoomID, booking.Date, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if overlaps(b.StartTime, b.EndTime, booking.StartTime, booking.EndTime) {
			return apperrors.Conflict(bookingserrors.ErrSlotConflict.Error()).WithDetails(map[string]any{
				"existing_start": b.StartTime,
				"existing_end":   b.EndTime,
			})
		}
	}
	return nil
}

// overlaps is the half-open interval test on zero-padded HH:MM strings:
// [s1, e1) and [s2, e2) intersect iff s1 < e2 && e1 > s2.
func overlaps(start1, end1, start2, end2 string) bool {
	return start1 < end2 && end1 > start2
}

func (s *bookingService) acquireSlotLock(ctx context.Context, roomID string, date time.Time, startTime string) (string, error) {
	lockID := fmt.Sprintf("slot_%s_%s_%s", roomID, model.DateOnly(date).Format(time.DateOnly), startTime)

	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(10 * time.Second),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *bookingService) expand(ctx context.Context, bookings []*model.Booking) ([]*model.BookingView, error) {
	roomIDs := make([]string, 0, len(bookings))
	customerIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		roomIDs = append(roomIDs, b.RoomID)
		customerIDs = append(customerIDs, b.CustomerID)
	}

	rooms, err := s.rooms.FindByIDs(ctx, roomIDs)
	if err != nil {
		return nil, apperrors.Internal("Failed to expand room references", err)
	}
	customers, err := s.customers.FindByIDs(ctx, customerIDs)
	if err != nil {
		return nil, apperrors.Internal("Failed to expand customer references", err)
	}

	views := make([]*model.BookingView, 0, len(bookings))
	for _, b := range bookings {
		view := &model.BookingView{
			ID:        b.ID,
			Room:      model.RoomReference(b.RoomID),
			Customer:  model.CustomerReference(b.CustomerID),
			Date:      b.Date,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Status:    b.Status,
			CreatedAt: b.CreatedAt,
		}
		// Expansion is explicit: a missing referent stays a bare reference
		// rather than being guessed from payload shape.
		if room, ok := rooms[b.RoomID]; ok {
			view.Room = model.ExpandedRoom(room)
		}
		if customer, ok := customers[b.CustomerID]; ok {
			view.Customer = model.ExpandedCustomer(customer)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *bookingService) publishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) {
	event := events.New(eventType, events.BookingPayload{
		BookingID:  booking.ID,
		RoomID:     booking.RoomID,
		CustomerID: booking.CustomerID,
		Date:       booking.Date.Format(time.DateOnly),
		StartTime:  booking.StartTime,
		EndTime:    booking.EndTime,
		Status:     booking.Status,
	})
	// Events are best-effort; the booking is already durable.
	if err := s.publisher.Publish(ctx, booking.RoomID, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "type", eventType, "booking_id", booking.ID, "error", err)
	}
}

func translateRepoError(err error, id string, action string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		return apperrors.Internal("Failed to "+action, err)
	}
}
