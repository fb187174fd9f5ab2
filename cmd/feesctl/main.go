package main

import (
	"log"

	"schoolku_backend/internals/cli"
	"schoolku_backend/internals/configs"
)

func main() {
	configs.LoadEnv()
	if err := configs.SetupLogger(configs.LogConfigFromEnv()); err != nil {
		log.Fatalf("logger setup: %v", err)
	}
	cli.Execute()
}
