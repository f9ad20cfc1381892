package main

import (
	"fmt"
	"os"

	"github.com/yourusername/talatrivia-api/internal/cli"
)

// @title TalaTrivia API
// @version 1.0
// @description Trivia game backend: users, question bank, trivias, scoring and ranking.

// @host localhost:8000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
