package tools

import (
	"errors"
	"log"
	"os"
)

// ErrNotFound is returned by repositories when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// CheckEnvs checks the environment variables.
func CheckEnvs(envNames ...string) {
	for _, env := range envNames {
		envStr, exist := os.LookupEnv(env)

		if !exist {
			log.Fatalf("env variable not found: %s", env)
			os.Exit(1)
		}

		if envStr == "" {
			log.Fatalf("env variable not initialized: %s", env)
			os.Exit(1)
		}
	}
}
