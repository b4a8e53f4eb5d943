package main

import (
	"github.com/joho/godotenv"

	"attendsuite/internal/app/server"
)

func main() {
	// Missing .env is fine, real deployments configure through the
	// environment directly.
	_ = godotenv.Load()

	server.Run()
}
