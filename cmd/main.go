package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/cmd/commands"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	// Execute root command
	if err := commands.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
