package main

import (
	"fmt"
	"os"

	"bookhive-backend/internal/cli"
)

//go:generate swag init --generalInfo main.go --output docs --outputTypes go --parseInternal

// @title       BookHive circulation API
// @version     1.0
// @BasePath    /api/v1
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
