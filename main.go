package main

import (
	"time"

	"contests/config"
	"contests/database"
	"contests/middleware"
	v1 "contests/routes/v1"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	if _, err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(config.GinMode)
	database.InitDB()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.Default())

	v1.Register(r, database.DB)
	middleware.UpdateSystemMetrics(15 * time.Second)

	log.Printf("Starting server on port %s", config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
