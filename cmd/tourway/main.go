package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tourway/internal/app/commands"
	bookingapp "tourway/internal/app/handlers/booking"
	reviewsapp "tourway/internal/app/handlers/reviews"
	toursapp "tourway/internal/app/handlers/tours"
	"tourway/internal/app/middleware"
	appoutbox "tourway/internal/app/outbox"
	"tourway/internal/app/policies"
	"tourway/internal/app/queries"
	authsvc "tourway/internal/app/services/auth"
	"tourway/internal/app/services/documents"
	"tourway/internal/app/services/itineraries"
	"tourway/internal/app/uow"
	domainbooking "tourway/internal/domain/booking"
	domainitinerary "tourway/internal/domain/itinerary"
	domainreviews "tourway/internal/domain/reviews"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
	"tourway/internal/infra/broker/kafka"
	"tourway/internal/infra/config"
	mongodb "tourway/internal/infra/db/mongo"
	ginserver "tourway/internal/infra/http/gin"
	"tourway/internal/infra/notify"
	"tourway/internal/infra/obs"
	infraoutbox "tourway/internal/infra/outbox"
	"tourway/internal/infra/payments"
	"tourway/internal/infra/security"
	"tourway/internal/infra/storage/memory"
	"tourway/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	ready    func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	cleanup := func() {}

	var (
		tourRepo      domaintour.Repository
		bookingRepo   domainbooking.Repository
		userRepo      domainuser.Repository
		reviewRepo    domainreviews.Repository
		itineraryRepo domainitinerary.Repository
		uowFactory    uow.UoWFactory
		outboxStore   appoutbox.Outbox
		idStore       middleware.IdempotencyStore
		worker        *infraoutbox.Worker
		ready         = func() error { return nil }
	)

	switch cfg.StoreMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, cleanup, err
		}
		tourRepo = mongodb.NewTourRepository(client.DB)
		bookingRepo = mongodb.NewBookingRepository(client.DB)
		userRepo = mongodb.NewUserRepository(client.DB)
		reviewRepo = mongodb.NewReviewRepository(client.DB)
		itineraryRepo = mongodb.NewItineraryRepository(client.DB)
		uowFactory = mongodb.Factory{
			DB:          client.DB,
			TourRepo:    tourRepo,
			BookingRepo: bookingRepo,
			UserRepo:    userRepo,
			ReviewRepo:  reviewRepo,
		}
		mongoIdem := mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		if err := mongoIdem.EnsureIndexes(ctx); err != nil {
			logger.Warn("idempotency index creation failed", "error", err)
		}
		idStore = mongoIdem
		store := infraoutbox.NewStore(client.DB)
		outboxStore = store

		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, cleanup, err
		}
		cleanup = func() { _ = producer.Close() }
		worker = &infraoutbox.Worker{
			Store:       store,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
	default:
		tourRepo = memory.NewTourRepository()
		bookingRepo = memory.NewBookingRepository()
		userRepo = memory.NewUserRepository()
		reviewRepo = memory.NewReviewRepository()
		itineraryRepo = memory.NewItineraryRepository()
		uowFactory = memory.Factory{
			TourRepo:    tourRepo,
			BookingRepo: bookingRepo,
			UserRepo:    userRepo,
			ReviewRepo:  reviewRepo,
		}
		outboxStore = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
	}

	authService := &authsvc.Service{
		Users:      userRepo,
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	processor := &payments.Processor{Logger: logger}
	notifier := &notify.SMTPNotifier{
		Addr:     cfg.SMTPAddr,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		Logger:   logger,
	}

	var uploader documents.Uploader
	s3Client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("object storage unavailable, vouchers disabled", "error", err)
		uploader = s3.NoopUploader{}
	} else {
		uploader = s3Client
	}
	itineraryService := &itineraries.Service{
		Itineraries: itineraryRepo,
		Logger:      logger,
	}
	voucherService := &documents.Service{
		Bookings:   bookingRepo,
		Tours:      tourRepo,
		Users:      userRepo,
		Authorizer: authService,
		Uploader:   uploader,
		Logger:     logger,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: uowFactory,
		Payments:   processor,
		Notifier:   notifier,
		Outbox:     outboxStore,
		Encoder:    appoutbox.JSONEventEncoder{},
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: uowFactory,
		Authorizer: authService,
		Refunds:    policies.NoopRefundExecutor{},
		Notifier:   notifier,
		Outbox:     outboxStore,
		Encoder:    appoutbox.JSONEventEncoder{},
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.UpdateStatusCommand{}.Key(), &bookingapp.UpdateStatusHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    appoutbox.JSONEventEncoder{},
	})
	commands.RegisterHandler(commandBus, reviewsapp.SubmitReviewCommand{}.Key(), &reviewsapp.SubmitReviewHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler(commandBus, toursapp.CreateTourCommand{}.Key(), &toursapp.CreateTourHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler(commandBus, toursapp.UpdateTourCommand{}.Key(), &toursapp.UpdateTourHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler(commandBus, toursapp.DeactivateTourCommand{}.Key(), &toursapp.DeactivateTourHandler{
		UoWFactory: uowFactory,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{
		Bookings:   bookingRepo,
		Authorizer: authService,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListBookingsQuery{}.Key(), &bookingapp.ListBookingsHandler{
		Bookings: bookingRepo,
	})
	queries.RegisterHandler(queryBus, toursapp.SearchToursQuery{}.Key(), &toursapp.SearchToursHandler{
		Tours: tourRepo,
	})
	queries.RegisterHandler(queryBus, toursapp.GetTourQuery{}.Key(), &toursapp.GetTourHandler{
		Tours: tourRepo,
	})
	queries.RegisterHandler(queryBus, reviewsapp.ListReviewsQuery{}.Key(), &reviewsapp.ListReviewsHandler{
		Reviews: reviewRepo,
	})

	gate := policies.AdminGate{Roles: authService}
	// OutboxFlush wraps Transaction so pending records are only flushed
	// once the unit of work has committed.
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Authorization(gate),
		middleware.OutboxFlush(outboxStore),
		middleware.Transaction(uowFactory),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus, middleware.QueryAuthorization(gate))

	authMW := ginserver.AuthMiddleware{Service: authService, Logger: logger}
	handlers := ginserver.Handlers{
		Booking: ginserver.BookingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Vouchers: voucherService,
			Logger:   logger,
		},
		Tour: ginserver.TourHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		Itinerary: ginserver.ItineraryHandler{
			Service: itineraryService,
			Logger:  logger,
		},
		Review:         ginserver.ReviewHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		AuthMiddleware: authMW.Handle,
	}

	return application{handlers: handlers, worker: worker, ready: ready}, cleanup, nil
}
