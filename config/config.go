package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

func loadEnv() {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "No .env file loaded: %v\n", err)
		}
	})
}

// Config returns a required environment variable and exits if it is missing.
func Config(envVar string) string {
	loadEnv()

	envVarValue := os.Getenv(envVar)
	if envVarValue == "" {
		fmt.Fprintf(os.Stderr, "%s not set\n", envVar)
		os.Exit(1)
	}

	return envVarValue
}

// ConfigDefault returns an environment variable, or fallback when unset.
func ConfigDefault(envVar, fallback string) string {
	loadEnv()

	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}
