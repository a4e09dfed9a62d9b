package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
)

// JSONStorage is the file-mode fallback used when no database is configured.
type JSONStorage struct {
	FilePath string
	mu       sync.RWMutex
	Data     StorageData
}

type usageSnapshot struct {
	QuickCalls    int       `json:"quick_calls"`
	DeepCalls     int       `json:"deep_calls"`
	EstimatedCost float64   `json:"estimated_cost"`
	CreatedAt     time.Time `json:"created_at"`
}

type StorageData struct {
	Patterns  []domain.LearnedPattern `json:"patterns"`
	Feedback  []domain.Feedback       `json:"feedback"`
	TodoLists []domain.TodoList       `json:"todo_lists"`
	Usage     []usageSnapshot         `json:"usage"`
}

func NewJSONStorage(filePath string) (*JSONStorage, error) {
	s := &JSONStorage{FilePath: filePath}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := s.loadFromFile(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

var _ ports.Storage = (*JSONStorage)(nil)

func (s *JSONStorage) loadFromFile() error {
	file, err := os.ReadFile(s.FilePath)
	if err != nil {
		return err
	}
	return json.Unmarshal(file, &s.Data)
}

func (s *JSONStorage) saveToFile() error {
	data, err := json.MarshalIndent(s.Data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.FilePath, data, 0644)
}

func (s *JSONStorage) LoadPatterns(ctx context.Context) ([]domain.LearnedPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patterns := make([]domain.LearnedPattern, len(s.Data.Patterns))
	copy(patterns, s.Data.Patterns)
	return patterns, nil
}

func (s *JSONStorage) SaveFeedback(ctx context.Context, fb domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data.Feedback = append(s.Data.Feedback, fb)
	return s.saveToFile()
}

// SaveTodoList keeps only the most recent lists to stop the file from
// growing without bound.
func (s *JSONStorage) SaveTodoList(ctx context.Context, list domain.TodoList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data.TodoLists = append(s.Data.TodoLists, list)
	if len(s.Data.TodoLists) > 20 {
		s.Data.TodoLists = s.Data.TodoLists[len(s.Data.TodoLists)-20:]
	}
	return s.saveToFile()
}

func (s *JSONStorage) SaveUsageSnapshot(ctx context.Context, quickCalls, deepCalls int, estimatedCost float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data.Usage = append(s.Data.Usage, usageSnapshot{
		QuickCalls:    quickCalls,
		DeepCalls:     deepCalls,
		EstimatedCost: estimatedCost,
		CreatedAt:     time.Now(),
	})
	return s.saveToFile()
}
