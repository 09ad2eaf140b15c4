package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	config "github.com/wordrush/wordrush-services/configs"
	"github.com/wordrush/wordrush-services/internal/comm"
	nats "github.com/wordrush/wordrush-services/internal/nats"
	"github.com/wordrush/wordrush-services/internal/socketsvc/broker"
	"github.com/wordrush/wordrush-services/internal/socketsvc/routes"
	"github.com/wordrush/wordrush-services/internal/socketsvc/ws"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "socket"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	s := ws.NewWs()
	b := broker.NewBroker(n.Conn, s.GetConnection, s.GetRoomSockets)
	s.Broker = b

	// consume room broadcasts from the game service
	sub, err := b.Subscribe(comm.TopicGameEvents)
	if err != nil {
		log.Errorf("Error: unable to subscribe to topic %v", err)
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
	r.Use(c.Handler)

	routes.InitAuth()
	routes.SetRoutes(r, s)

	server := &http.Server{
		Addr:        ":" + os.Getenv("SOCKET_SERVICE_PORT"),
		Handler:     r,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

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
