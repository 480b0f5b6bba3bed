package main

import (
	"github.com/joho/godotenv"

	"github.com/david-revell/rag-agent/internal/cli"
)

func main() {
	// API keys are commonly kept in a local .env file.
	_ = godotenv.Load()

	cli.Execute()
}
