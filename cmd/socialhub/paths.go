package main

import (
	"fmt"
	"os"

	"github.com/benaskins/socialhub/internal/config"
)

// socialhubHome returns the socialhub home directory (~/.socialhub),
// creating it if needed.
func socialhubHome() (string, error) {
	dir := config.Dir()
	if dir == "" {
		return "", fmt.Errorf("cannot determine home directory")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}
