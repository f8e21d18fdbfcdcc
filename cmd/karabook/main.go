package main

import (
	"context"

	"github.com/joho/godotenv"

	authhandler "karabook/internal/auth/handler"
	authservice "karabook/internal/auth/service"
	bookinghandler "karabook/internal/bookings/handler"
	bookingrepo "karabook/internal/bookings/repository"
	bookingservice "karabook/internal/bookings/service"
	bookingvalidator "karabook/internal/bookings/validator"
	customerhandler "karabook/internal/customers/handler"
	customerrepo "karabook/internal/customers/repository"
	customerservice "karabook/internal/customers/service"
	migrations "karabook/internal/migrations/mongo"
	roomhandler "karabook/internal/rooms/handler"
	roomrepo "karabook/internal/rooms/repository"
	roomservice "karabook/internal/rooms/service"
	"karabook/pkg/app"
	"karabook/pkg/config"
	"karabook/pkg/contracts"
	"karabook/pkg/events"
)

const ServiceName = "karabook"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting karabook service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	migrationCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	if err := migrations.EnsureIndexes(migrationCtx, cfg); err != nil {
		cfg.Log.Fatal("Failed to ensure database indexes", "error", err)
	}
	cancel()

	publisher := initPublisher(cfg)
	defer publisher.Close()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(initHandlers(cfg, publisher)...)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("No Kafka brokers configured, booking events disabled")
		return events.NoopPublisher{}
	}
	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}
	cfg.Log.Info("Kafka publisher initialized", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return publisher
}

func initHandlers(cfg *config.Config, publisher events.Publisher) []contracts.Handler {
	userRepo := customerrepo.NewMongoUserRepository(cfg)
	roomRepo := roomrepo.NewMongoRoomRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewBookingLockRepository(cfg)

	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		roomRepo,
		userRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	roomService := roomservice.NewRoomService(roomRepo, cfg)
	customerService := customerservice.NewCustomerService(userRepo, cfg)
	authService := authservice.NewAuthService(userRepo, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		roomhandler.NewRoomHandler(roomService, cfg.Log),
		customerhandler.NewCustomerHandler(customerService, cfg.Log),
		authhandler.NewAuthHandler(authService, cfg.Log),
	}
}
