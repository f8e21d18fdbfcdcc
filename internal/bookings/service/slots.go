package service

import (
	"context"
	"fmt"
	"time"

	apperrors "karabook/pkg/errors"
	"karabook/pkg/model"
)

// AvailableSlots lists the open fixed-size slots for a room on a date. With
// the defaults (opens 09:00, closes 22:00, 60-minute slots) a free day yields
// 13 candidates, the last one 21:00-22:00; every slot occupied by a
// non-cancelled booking is dropped from the output.
func (s *bookingService) AvailableSlots(ctx context.Context, roomID string, date time.Time) ([]model.Slot, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.repo.FindForAdmission(ctx, roomID, date, "")
	if err != nil {
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}

	candidates := buildSlots(s.cfg.DayStartHour, s.cfg.DayEndHour, s.cfg.SlotMinutes)

	open := make([]model.Slot, 0, len(candidates))
	for _, slot := range candidates {
		free := true
		for _, b := range existing {
			if overlaps(b.StartTime, b.EndTime, slot.StartTime, slot.EndTime) {
				free = false
				break
			}
		}
		if free {
			open = append(open, slot)
		}
	}

	return open, nil
}

// buildSlots generates candidate slots of slotMinutes each, starting at
// startHour:00. Only candidates that fit entirely before the closing hour are
// kept, so the last slot ends exactly at endHour:00.
func buildSlots(startHour, endHour, slotMinutes int) []model.Slot {
	var slots []model.Slot

	closing := endHour * 60
	for minutes := startHour * 60; minutes+slotMinutes <= closing; minutes += slotMinutes {
		slots = append(slots, model.Slot{
			StartTime: formatMinutes(minutes),
			EndTime:   formatMinutes(minutes + slotMinutes),
		})
	}

	return slots
}

func formatMinutes(minutes int) string {
	if minutes >= 24*60 {
		// 24:00 never appears as a slot start; as an end it means midnight.
		return "24:00"
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
