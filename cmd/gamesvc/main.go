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
	"github.com/redis/go-redis/v9"

	config "github.com/wordrush/wordrush-services/configs"
	"github.com/wordrush/wordrush-services/internal/gamesvc/broker"
	svcconfig "github.com/wordrush/wordrush-services/internal/gamesvc/config"
	"github.com/wordrush/wordrush-services/internal/gamesvc/db"
	handlers "github.com/wordrush/wordrush-services/internal/gamesvc/handlers"
	"github.com/wordrush/wordrush-services/internal/gamesvc/oracle"
	"github.com/wordrush/wordrush-services/internal/gamesvc/questioncache"
	"github.com/wordrush/wordrush-services/internal/gamesvc/service"
	"github.com/wordrush/wordrush-services/internal/gamesvc/store"
	nats "github.com/wordrush/wordrush-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg := svcconfig.Load()

	// pg connection
	dbpool, err := db.Connect(cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	// redis, backs the question bank cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	userStore := store.NewUserStore(dbpool)
	userService := service.NewUserService(userStore)

	gameStore := store.NewGameStore(dbpool)
	playerStore := store.NewPlayerStore(dbpool)
	assignmentStore := store.NewAssignmentStore(dbpool)
	submissionStore := store.NewSubmissionStore(dbpool)
	scoreStore := store.NewScoreStore(dbpool)
	questionStore := store.NewQuestionStore(dbpool)

	bank := questioncache.New(rdb, questionStore, time.Duration(cfg.QuestionTTL)*time.Second)

	gameService := service.NewGameService(gameStore, playerStore, assignmentStore, submissionStore)
	roundService := service.NewRoundService(gameStore, playerStore, assignmentStore, bank)
	submissionService := service.NewSubmissionService(gameStore, playerStore, assignmentStore, submissionStore)
	scoreService := service.NewScoreService(scoreStore)

	judge := oracle.New(cfg.OllamaURL, cfg.OllamaModel, time.Duration(cfg.JudgeTimeout)*time.Second)
	verdictService := service.NewVerdictService(submissionStore, playerStore, assignmentStore, judge, scoreService)

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// room broadcast broker
	b := broker.NewBroker(n.Conn, gameService)

	// subscribe to socket service
	sub, err := b.SubscribeSocketService("socket.service")
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(userService, gameService, roundService, submissionService, verdictService,
		bank, questionStore, b)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("GAME_SERVICE_PORT"),
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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
