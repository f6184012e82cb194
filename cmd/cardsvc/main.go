package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	configs "github.com/evervow/card-services/configs"
	"github.com/evervow/card-services/internal/cardsvc/broker"
	"github.com/evervow/card-services/internal/cardsvc/config"
	"github.com/evervow/card-services/internal/cardsvc/db"
	handlers "github.com/evervow/card-services/internal/cardsvc/handlers"
	"github.com/evervow/card-services/internal/cardsvc/service"
	"github.com/evervow/card-services/internal/cardsvc/store"
	"github.com/evervow/card-services/internal/cardsvc/ws"
	"github.com/evervow/card-services/internal/elevenlabs"
	nats "github.com/evervow/card-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "card"

var instanceId string

func init() {
	instanceId = "001"
	configs.Logging(SERVICE_NAME + "_service_" + instanceId)
	configs.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg := config.Load()

	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create data directories: %v", err)
	}

	// pg connection
	dbpool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureSchema(ctx, dbpool); err != nil {
		cancel()
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	cancel()

	// mongo holds the append-only view log
	mongoDB, disconnectMongo, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer disconnectMongo()
	log.Printf("mongo connection established successfully")

	userStore := store.NewUserStore(dbpool)
	cardStore := store.NewCardStore(dbpool)
	voiceModelStore := store.NewVoiceModelStore(dbpool)

	viewStore := store.NewViewStore(mongoDB)
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if err := viewStore.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to ensure view indexes: %v", err)
	}
	cancel()

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	provider := elevenlabs.New(cfg.ElevenLabsBaseURL, cfg.ElevenLabsAPIKey)
	if !provider.Configured() {
		log.Warn("ELEVENLABS_API_KEY not set, voice cloning is disabled")
	}

	voiceService := service.NewVoiceService(provider, voiceModelStore, cfg.VoiceSamplesDir(), cfg.GeneratedAudioDir())
	qrService := service.NewQRService(cfg.PublicBaseURL, cfg.QRCodesDir())
	authService := service.NewAuthService(userStore, cardStore)
	cardService := service.NewCardService(cardStore, voiceService, qrService, cfg.GeneratedAudioDir())

	// live view feed: views publish to NATS, the broker relays them to the
	// owner's websocket connections on whichever instance holds them
	hub := ws.NewHub()
	viewBroker := broker.NewBroker(n.Conn, hub)

	sub, err := viewBroker.Subscribe(broker.TopicCardViewed)
	if err != nil {
		log.Errorf("Error: unable to subscribe to %s %v", broker.TopicCardViewed, err)
		os.Exit(0)
	}

	analyticsService := service.NewAnalyticsService(cardStore, viewStore, viewBroker)

	// Setup router
	r := chi.NewRouter()
	c := configs.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(configs.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimit, err := strconv.Atoi(cfg.RateLimit)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(cfg, authService, cardService, voiceService, analyticsService, hub)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
