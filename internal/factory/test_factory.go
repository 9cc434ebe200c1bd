package factory

import (
	"time"

	"github.com/partyquiz/partyquiz/internal/dependencies/mocks"
	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/services/auth"
	"github.com/partyquiz/partyquiz/internal/storage/memory"
	"github.com/partyquiz/partyquiz/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = "test-secret"

	app := newWithDependencies(store, mockClock, mockRandom, authCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestQuestions loads a small prompt corpus for testing
func (t *TestApp) LoadTestQuestions() error {
	prompts := []model.Prompt{
		{ID: 1, Text: "What is the worst superpower to have?", Category: "silly"},
		{ID: 2, Text: "Name a terrible ice cream flavor", Category: "food"},
		{ID: 3, Text: "The best excuse for being late to work", Category: "life"},
		{ID: 4, Text: "What would make a job interview instantly awkward?", Category: "life"},
		{ID: 5, Text: "The worst thing to say at a wedding", Category: "silly"},
		{ID: 6, Text: "A rejected name for a new planet", Category: "space"},
		{ID: 7, Text: "What do cats actually think about all day?", Category: "animals"},
		{ID: 8, Text: "The least inspiring motivational poster text", Category: "silly"},
	}
	return t.QuestionService.LoadPrompts(prompts)
}
