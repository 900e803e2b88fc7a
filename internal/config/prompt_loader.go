package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"resumeimport/internal/errors"
)

// loadPromptsFromFiles reads every configured prompt file. A missing or
// empty file is a config error so a typo never silently falls back to the
// built-in prompt.
func (c *Config) loadPromptsFromFiles() error {
	global, err := loadPromptFiles(c.AI.CustomPrompts, "global")
	if err != nil {
		return err
	}
	c.AI.Loaded = global

	extract, err := loadPromptFiles(c.AI.Extract.CustomPrompts, "extract")
	if err != nil {
		return err
	}
	c.AI.Extract.Loaded = extract

	if count := countLoaded(global) + countLoaded(extract); count > 0 {
		log.Printf("[CONFIG] Custom prompts loaded from files: %d", count)
	}
	return nil
}

func loadPromptFiles(prompts PromptConfig, scope string) (LoadedPrompts, error) {
	var loaded LoadedPrompts
	var err error

	if prompts.SystemPromptFile != "" {
		if loaded.System, err = loadPromptFromFile(prompts.SystemPromptFile, scope, "system"); err != nil {
			return LoadedPrompts{}, err
		}
	}
	if prompts.UserPromptFile != "" {
		if loaded.User, err = loadPromptFromFile(prompts.UserPromptFile, scope, "user"); err != nil {
			return LoadedPrompts{}, err
		}
	}
	return loaded, nil
}

// loadPromptFromFile returns the trimmed file content.
func loadPromptFromFile(filePath, scope, promptType string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid path for %s %s prompt: %s", scope, promptType, filePath), err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		code := errors.ErrCodeFileNotReadable
		if os.IsNotExist(err) {
			code = errors.ErrCodeFileNotFound
		}
		return "", errors.NewConfigError(code,
			fmt.Sprintf("%s %s prompt file not readable: %s", scope, promptType, absPath), err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("%s %s prompt file is empty: %s", scope, promptType, absPath), nil)
	}

	log.Printf("[CONFIG] Loaded %s %s prompt from %s (%d characters)", scope, promptType, absPath, len(trimmed))
	return trimmed, nil
}

func countLoaded(p LoadedPrompts) int {
	n := 0
	if p.System != "" {
		n++
	}
	if p.User != "" {
		n++
	}
	return n
}
