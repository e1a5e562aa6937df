package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/openhire/openhire/cmd/openhire/commands"
	"github.com/openhire/openhire/pkg/logx"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logx.SetDefaultLogger(logx.NewLogger(logx.ConfigFromEnv()))

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
