package main

import (
	"github.com/joho/godotenv"

	"sustainapi/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
