package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// defaultPromptDir is the subdirectory within the user's home directory.
const defaultPromptDir = ".config/dosug/prompts"

// LoadPromptContent returns the content of a prompt override file, or
// fallback when no override is configured.
// An absolute path is used as is. A relative path is tried against the
// working directory first and then against ~/.config/dosug/prompts/.
func LoadPromptContent(configuredPath, fallback string) (string, error) {
	if strings.TrimSpace(configuredPath) == "" {
		return fallback, nil
	}

	finalPath := configuredPath
	if !filepath.IsAbs(configuredPath) {
		if _, err := os.Stat(configuredPath); err != nil {
			homeDir, herr := os.UserHomeDir()
			if herr != nil {
				return "", fmt.Errorf("failed to get user home directory: %w", herr)
			}
			finalPath = filepath.Join(homeDir, defaultPromptDir, configuredPath)
		}
	}

	promptBytes, err := os.ReadFile(finalPath)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file '%s': %w", finalPath, err)
	}

	prompt := strings.TrimSpace(string(promptBytes))
	if prompt == "" {
		return "", fmt.Errorf("prompt file '%s' is empty", finalPath)
	}
	return prompt, nil
}
