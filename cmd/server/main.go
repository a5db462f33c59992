package main

import (
	"eventsapi/internal/cli"
)

// @title Events API
// @version 1.0.0
// @description Events discovery API with categories, locations, image uploads and JWT authentication.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cli.Execute()
}
