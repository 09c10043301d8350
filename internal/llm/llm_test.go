package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyRecord() *models.DailyRecord {
	return &models.DailyRecord{
		Date:         "2024-01-15",
		TotalCommits: 6,
		Repositories: map[string]*models.RepositoryDailyStats{
			"api": {CommitsCount: 2, Language: "Go"},
			"web": {CommitsCount: 4, Language: "TypeScript"},
		},
		Languages:      map[string]int{"Go": 2, "TypeScript": 4},
		EstimatedHours: 2.5,
	}
}

func TestBuildDailyPrompt(t *testing.T) {
	prompt := BuildDailyPrompt(dailyRecord())

	assert.Contains(t, prompt, "**Daily Summary (2024-01-15)**")
	assert.Contains(t, prompt, "- Total Commits: 6\n")
	assert.Contains(t, prompt, "- Estimated Coding Time: 2.5 hours")
	assert.Contains(t, prompt, "- Repositories Active: 2")
	assert.Contains(t, prompt, "- Languages Used: TypeScript, Go")
	assert.Contains(t, prompt, "  - TypeScript: 4\n  - Go: 2")
	assert.Contains(t, prompt, "  - web: 4 commits (TypeScript)\n  - api: 2 commits (Go)")
	assert.True(t, strings.HasSuffix(prompt, "Keep the response concise and motivating."))
}

func TestBuildDailyPrompt_NoActivity(t *testing.T) {
	prompt := BuildDailyPrompt(&models.DailyRecord{Date: "2024-01-16"})

	assert.Contains(t, prompt, "- Languages Used: None")
	assert.Contains(t, prompt, "**Language Breakdown:**\nNone")
	assert.Contains(t, prompt, "**Repository Activity:**\nNone")
}

func TestBuildMonthlyPrompt(t *testing.T) {
	prompt := BuildMonthlyPrompt(&models.MonthlyRecord{
		Month:            "January 2024",
		TotalCommits:     40,
		TotalHours:       22.5,
		ActiveDays:       12,
		LongestStreak:    5,
		AvgCommitsPerDay: 3.33,
		Languages:        map[string]int{"Go": 30, "Python": 10},
		TopRepositories:  []string{"api", "web"},
		CommitsByWeek:    map[string]int{"Week 2": 15, "Week 3": 25},
	})

	assert.Contains(t, prompt, "**Monthly Summary (January 2024)**")
	assert.Contains(t, prompt, "- Longest Streak: 5 days")
	assert.Contains(t, prompt, "- Average Commits/Day: 3.33")
	assert.Contains(t, prompt, "**Top Repositories:**\n  - api\n  - web")
	assert.Contains(t, prompt, "**Weekly Breakdown:**\n  - Week 3: 25\n  - Week 2: 15")
	assert.Contains(t, prompt, "5. 2-3 actionable recommendations for the next month")
}

func TestBuildPrompt_RejectsMismatchedReport(t *testing.T) {
	_, err := BuildPrompt(models.Report{Kind: models.KindMonthly, Daily: dailyRecord()})
	assert.Error(t, err)
}

func TestMaxTokens(t *testing.T) {
	assert.Equal(t, 1000, MaxTokens(models.KindDaily))
	assert.Equal(t, 2000, MaxTokens(models.KindMonthly))
}

type recordingCompleter struct {
	prompt    string
	maxTokens int
	deadline  bool
	text      string
	err       error
}

func (r *recordingCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	r.prompt = prompt
	r.maxTokens = maxTokens
	_, r.deadline = ctx.Deadline()
	return r.text, r.err
}

func TestClient_Generate(t *testing.T) {
	logger, _ := test.NewNullLogger()
	completer := &recordingCompleter{text: "Great focus today."}
	client := NewClientWith(ProviderGemini, completer, time.Minute, logger)

	text, err := client.Generate(context.Background(), models.MonthlyReport(&models.MonthlyRecord{Month: "March 2024"}))
	require.NoError(t, err)
	assert.Equal(t, "Great focus today.", text)
	assert.Equal(t, MonthlyMaxTokens, completer.maxTokens)
	assert.Contains(t, completer.prompt, "March 2024")
	assert.True(t, completer.deadline)
}

func TestClient_GeneratePropagatesErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	client := NewClientWith(ProviderOpenAI, &recordingCompleter{err: errors.New("quota exceeded")}, 0, logger)

	_, err := client.Generate(context.Background(), models.DailyReport(dailyRecord()))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestNewClient_DisabledProviders(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	none, err := NewClient(ctx, config.LLMConfig{Provider: "none"}, logger)
	require.NoError(t, err)
	assert.False(t, none.IsEnabled())
	_, err = none.Generate(ctx, models.DailyReport(dailyRecord()))
	assert.Error(t, err)

	keyless, err := NewClient(ctx, config.LLMConfig{Provider: "gemini"}, logger)
	require.NoError(t, err)
	assert.False(t, keyless.IsEnabled())
	assert.Equal(t, ProviderGemini, keyless.GetProvider())

	_, err = NewClient(ctx, config.LLMConfig{Provider: "claude"}, logger)
	assert.Error(t, err)
}

func TestCompatibleClient(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer local-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "llama3",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Steady progress."}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
		}`))
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	client, err := NewClient(context.Background(), config.LLMConfig{
		Provider:        "compatible",
		CompatibleURL:   srv.URL + "/v1/",
		CompatibleKey:   "local-key",
		CompatibleModel: "llama3",
		Temperature:     0.7,
	}, logger)
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), models.DailyReport(dailyRecord()))
	require.NoError(t, err)
	assert.Equal(t, "Steady progress.", text)
	assert.Equal(t, "llama3", body["model"])
	assert.EqualValues(t, DailyMaxTokens, body["max_tokens"])
}

func TestNewCompatibleClient_RequiresEndpoint(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewCompatibleClient("", "", "llama3", 0.7, logger)
	assert.Error(t, err)
	_, err = NewCompatibleClient("http://localhost:11434/v1/", "", "", 0.7, logger)
	assert.Error(t, err)
}
