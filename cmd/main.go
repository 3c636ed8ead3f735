package main

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/peercall/signal-server/config"
	"github.com/peercall/signal-server/controllers"
	"github.com/peercall/signal-server/realtime"
	"github.com/peercall/signal-server/routes"
	"github.com/peercall/signal-server/services"
)

func main() {
	config.LoadEnv()
	config.ConnectDB()

	hub := realtime.NewHub()
	go hub.Run()

	roomSvc := services.NewRoomService(config.DB)
	membershipSvc := services.NewMembershipService(config.DB)
	signalingSvc := services.NewSignalingService(config.DB, hub)
	statusSvc := services.NewStatusService(config.DB)

	r := gin.Default()

	allowedOrigins := strings.Split(os.Getenv("CORS_ORIGINS"), ",")
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			for _, allowed := range allowedOrigins {
				if allowed != "" && origin == strings.TrimSpace(allowed) {
					return true
				}
			}
			return origin == "http://localhost:5173"
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Signal server is running")
	})

	routes.SetupRoutes(r, routes.Controllers{
		Room:       controllers.NewRoomController(roomSvc, statusSvc),
		Membership: controllers.NewMembershipController(membershipSvc),
		Signaling:  controllers.NewSignalingController(signalingSvc),
		Ws:         controllers.NewWsController(hub, roomSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("Server listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
