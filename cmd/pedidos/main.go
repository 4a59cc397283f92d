// Command pedidos runs the order backend.
//
//	@title						Pedidos API
//	@version					1.0
//	@description				Orders captured from Telegram, managed from the staff dashboard.
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the access token.
package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"

	"github.com/tbourn/pedidos-backend/internal/cli"
)

func main() {
	// A missing .env is normal in containers.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}
	cli.Execute()
}
