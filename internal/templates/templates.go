// Package templates provides canned admin response templates. It loads
// template strings from JSON files and offers a simple lookup keyed by
// complaint category.
package templates

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store manages the response templates for the application.
// It holds a map of categories, each with its own map of template keys
// and reply texts.
type Store struct {
	templates map[string]map[string]string
	mu        sync.RWMutex
}

// NewStore creates and returns a new template Store.
// It loads all templates from the provided directory path. The
// directory should contain JSON files named after the complaint
// category (e.g. "technical.json").
func NewStore(path string) (*Store, error) {
	s := &Store{
		templates: make(map[string]map[string]string),
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		category := strings.TrimSuffix(file.Name(), ".json")
		filePath := filepath.Join(path, file.Name())

		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file %s: %w", file.Name(), err)
		}

		var entries map[string]string
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse template file %s: %w", file.Name(), err)
		}

		s.templates[category] = entries
	}

	return s, nil
}

// Get returns the template text for a given category and key.
// If the category or the key is not found, it falls back to the "other"
// category before returning the key itself.
func (s *Store) Get(category, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entries, ok := s.templates[category]; ok {
		if value, ok := entries[key]; ok {
			return value
		}
	}

	if category != "other" {
		if entries, ok := s.templates["other"]; ok {
			if value, ok := entries[key]; ok {
				return value
			}
		}
	}

	return key
}

// Category returns all templates for one category. The returned map is
// a copy; callers can mutate it freely.
func (s *Store) Category(category string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.templates[category]))
	for k, v := range s.templates[category] {
		out[k] = v
	}
	return out
}
