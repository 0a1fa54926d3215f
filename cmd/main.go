package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/grupoalpa/eventos-ops/internal/auth"
	"github.com/grupoalpa/eventos-ops/internal/booking"
	"github.com/grupoalpa/eventos-ops/internal/clock"
	"github.com/grupoalpa/eventos-ops/internal/db"
	"github.com/grupoalpa/eventos-ops/internal/handlers"
	"github.com/grupoalpa/eventos-ops/internal/maintenance"
	"github.com/grupoalpa/eventos-ops/internal/middleware"
	"github.com/grupoalpa/eventos-ops/internal/notify"
	"github.com/grupoalpa/eventos-ops/internal/pricing"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log.SetFormatter(&log.JSONFormatter{})

	clk, err := clock.NewBusinessClock()
	if err != nil {
		log.WithError(err).Fatal("Failed to load business timezone")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("Connected to MongoDB")

	database := client.Database(db.DatabaseName())

	locksColl := database.Collection("locks")
	if err := db.EnsureLockIndexes(context.Background(), locksColl); err != nil {
		log.WithError(err).Fatal("Failed to create lock indexes")
	}

	resources := &db.MongoResourceCollection{Collection: database.Collection("resources")}
	events := &db.MongoEventCollection{Collection: database.Collection("events")}
	assignations := &db.MongoAssignationCollection{Collection: database.Collection("assignations")}
	maintenances := &db.MongoMaintenanceCollection{Collection: database.Collection("maintenances")}
	prices := &db.MongoReferencePriceCollection{Collection: database.Collection("reference_prices")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	locker := &db.MongoResourceLocker{Collection: locksColl}

	var notifier notify.Dispatcher = notify.LogDispatcher{}
	if brokerURL := os.Getenv("MQTT_BROKER_URL"); brokerURL != "" {
		topic := os.Getenv("MQTT_REMINDER_TOPIC")
		if topic == "" {
			topic = "eventos/maintenance/reminders"
		}
		mqttDispatcher, err := notify.NewMQTTDispatcher(brokerURL, "eventos-ops", topic)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MQTT broker")
		}
		defer mqttDispatcher.Close()
		notifier = mqttDispatcher
		log.WithField("topic", topic).Info("MQTT reminder dispatcher connected")
	}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	bookingService := booking.NewService(resources, events, assignations, locker)
	maintenanceService := maintenance.NewService(resources, maintenances, assignations, locker, clk, notifier)
	pricingService := pricing.NewService(resources, prices, clk)

	scheduler := maintenance.NewScheduler(maintenanceService, resources, clk)
	if err := scheduler.Start(os.Getenv("SCHEDULER_CRON")); err != nil {
		log.WithError(err).Fatal("Failed to start preventive scheduler")
	}
	defer scheduler.Stop()

	authHandler := handlers.NewAuthHandler(authService, users)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
	pricingHandler := handlers.NewPricingHandler(pricingService)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/availability", bookingHandler.Availability)
	mux.Handle("/api/assignations", authMiddleware.RequireMutator(http.HandlerFunc(bookingHandler.Assignations)))
	mux.Handle("/api/assignations/workers", authMiddleware.RequireMutator(http.HandlerFunc(bookingHandler.ReconcileWorkers)))
	mux.Handle("/api/maintenances", authMiddleware.RequireMutator(http.HandlerFunc(maintenanceHandler.Create)))
	mux.Handle("/api/maintenances/status", authMiddleware.RequireMutator(http.HandlerFunc(maintenanceHandler.UpdateStatus)))
	mux.Handle("/api/prices/revise", authMiddleware.RequireMutator(http.HandlerFunc(pricingHandler.Revise)))
	mux.HandleFunc("/api/prices/history", pricingHandler.History)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: authMiddleware.Authenticate(mux),
	}

	go func() {
		log.WithField("port", port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
}
