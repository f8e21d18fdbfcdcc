package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "karabook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultJWTTTL = 24 * time.Hour

	DefaultKafkaTopic = "booking-events"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Venue opens at 09:00 and closes at 22:00, so one-hour slots give 13
	// candidates per day, the last one 21:00-22:00.
	DefaultDayStartHour = 9
	DefaultDayEndHour   = 22
	DefaultSlotMinutes  = 60

	DefaultBcryptCost = 12

	DefaultPaginationLimit = 100
)

// Booking statuses live here so every layer agrees on the spelling.
const (
	Booked    = "booked"
	Completed = "completed"
	Cancelled = "cancelled"
)
