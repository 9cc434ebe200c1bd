package questions

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/partyquiz/partyquiz/internal/dependencies/random"
	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/storage"
)

// Service supplies prompts from the question corpus
type Service struct {
	storage storage.Storage
	random  random.Random

	mu      sync.RWMutex
	prompts []model.Prompt
	loaded  bool
}

// New creates a new questions Service
func New(storage storage.Storage, random random.Random) *Service {
	return &Service{
		storage: storage,
		random:  random,
	}
}

// LoadFromStorage loads the corpus from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	prompts, err := s.storage.GetPrompts(ctx)
	if err != nil {
		return err
	}
	return s.loadPrompts(prompts)
}

// LoadFromFile loads the corpus from a JSON file of
// {"id", "category", "question"} entries
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var prompts []model.Prompt
	if err := json.Unmarshal(data, &prompts); err != nil {
		return err
	}

	// Save to storage for future use
	if err := s.storage.SavePrompts(ctx, prompts); err != nil {
		return err
	}

	return s.loadPrompts(prompts)
}

// LoadPrompts directly loads a slice of prompts (useful for testing)
func (s *Service) LoadPrompts(prompts []model.Prompt) error {
	return s.loadPrompts(prompts)
}

func (s *Service) loadPrompts(prompts []model.Prompt) error {
	if len(prompts) == 0 {
		return model.ErrEmptyQuestionCorpus
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = make([]model.Prompt, len(prompts))
	copy(s.prompts, prompts)
	s.loaded = true
	return nil
}

// RandomPrompt returns a uniformly random prompt from the corpus,
// loading it from storage on first use
func (s *Service) RandomPrompt(ctx context.Context) (model.Prompt, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()

	if !loaded {
		if err := s.LoadFromStorage(ctx); err != nil {
			return model.Prompt{}, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.prompts) == 0 {
		return model.Prompt{}, model.ErrEmptyQuestionCorpus
	}
	return s.prompts[s.random.Intn(len(s.prompts))], nil
}

// Count returns the number of prompts loaded
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prompts)
}
