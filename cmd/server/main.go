package main

import (
	"log"

	_ "github.com/joelosiris11/mainkam/docs"
	"github.com/joelosiris11/mainkam/internal/config"
	"github.com/joelosiris11/mainkam/internal/server"
)

// @title           Mainkam API
// @version         1.0
// @description     API for collaborative Kanban project management.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
