package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rohankatakam/insightify/internal/models"
)

const (
	DefaultDiscordUsername = "Insightify Bot"
	DefaultDiscordAvatar   = "https://cdn-icons-png.flaticon.com/512/25/25231.png"

	dailyInsightLimit = 1000
	fieldValueLimit   = 1024
	descriptionLimit  = 4000
	descriptionSplit  = 2000

	monthlyColor       = 0x2C3E50
	emptyMonthlyNotice = "⚠️ AI analysis failed to generate. Please check the logs."
)

// DiscordPayload is the webhook request body.
type DiscordPayload struct {
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url"`
	Embeds    []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string         `json:"title"`
	Color       int            `json:"color"`
	Description string         `json:"description,omitempty"`
	Fields      []DiscordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
	Footer      DiscordFooter  `json:"footer"`
}

type DiscordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

// Discord posts embeds to a channel webhook.
type Discord struct {
	webhookURL string
	username   string
	avatarURL  string
	client     *http.Client
	now        func() time.Time
}

func NewDiscord(webhookURL, username, avatarURL string) *Discord {
	if username == "" {
		username = DefaultDiscordUsername
	}
	if avatarURL == "" {
		avatarURL = DefaultDiscordAvatar
	}
	return &Discord{
		webhookURL: webhookURL,
		username:   username,
		avatarURL:  avatarURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Supports(kind models.ReportKind) bool { return true }

func (d *Discord) Notify(ctx context.Context, report models.Report) error {
	payload, err := d.Payload(report)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// Payload builds the webhook body for report.
func (d *Discord) Payload(report models.Report) (*DiscordPayload, error) {
	if err := report.Validate(); err != nil {
		return nil, err
	}
	stamp := d.now().UTC().Format(time.RFC3339)

	var embed DiscordEmbed
	if report.Kind == models.KindMonthly {
		embed = MonthlyEmbed(report.Monthly, stamp)
	} else {
		embed = DailyEmbed(report.Daily, stamp)
	}
	return &DiscordPayload{Username: d.username, AvatarURL: d.avatarURL, Embeds: []DiscordEmbed{embed}}, nil
}

// ActivityColor maps a day's commit count to the embed accent colour.
func ActivityColor(commits int) int {
	switch {
	case commits == 0:
		return 0x95a5a6
	case commits < 5:
		return 0x3498db
	case commits < 10:
		return 0x2ecc71
	default:
		return 0xf39c12
	}
}

// DailyEmbed renders the daily progress card.
func DailyEmbed(r *models.DailyRecord, timestamp string) DiscordEmbed {
	embed := DiscordEmbed{
		Title: "📊 Daily Progress Report - " + orNA(r.Date),
		Color: ActivityColor(r.TotalCommits),
		Fields: []DiscordField{
			{Name: "📈 Commits", Value: fmt.Sprintf("**%d** commits", r.TotalCommits), Inline: true},
			{Name: "⏱️ Time Spent", Value: fmt.Sprintf("~**%v** hours", r.EstimatedHours), Inline: true},
			{Name: "📁 Repositories", Value: fmt.Sprintf("**%d** active", len(r.Repositories)), Inline: true},
		},
		Timestamp: timestamp,
		Footer:    DiscordFooter{Text: "Insightify - Track your coding journey"},
	}

	if len(r.Languages) > 0 {
		var lines []string
		for _, e := range top(models.RankMap(r.Languages), 5) {
			lines = append(lines, fmt.Sprintf("• %s: %d commits", e.Key, e.Count))
		}
		embed.Fields = append(embed.Fields, DiscordField{Name: "💻 Languages Used", Value: strings.Join(lines, "\n")})
	}

	if len(r.Repositories) > 0 {
		counts := make(map[string]int, len(r.Repositories))
		for name, stats := range r.Repositories {
			counts[name] = stats.CommitsCount
		}
		var lines []string
		for _, e := range top(models.RankMap(counts), 5) {
			lines = append(lines, fmt.Sprintf("• [%s](%s): %d commits", e.Key, r.Repositories[e.Key].URL, e.Count))
		}
		embed.Fields = append(embed.Fields, DiscordField{Name: "🔥 Active Repositories", Value: strings.Join(lines, "\n")})
	}

	if r.AIInsights != "" {
		text := r.AIInsights
		if runes := []rune(text); len(runes) > dailyInsightLimit {
			text = string(runes[:dailyInsightLimit]) + "..."
		}
		embed.Fields = append(embed.Fields, DiscordField{Name: "🤖 AI Insights", Value: text})
	}
	return embed
}

// MonthlyEmbed renders the monthly analysis card. Long insights spill from
// the description into follow-up fields.
func MonthlyEmbed(r *models.MonthlyRecord, timestamp string) DiscordEmbed {
	insights := r.AIInsights
	if strings.TrimSpace(insights) == "" {
		insights = emptyMonthlyNotice
	}

	embed := DiscordEmbed{
		Title:     "🤖 Monthly AI Analysis - " + orNA(r.Month),
		Color:     monthlyColor,
		Timestamp: timestamp,
		Footer:    DiscordFooter{Text: "Insightify - AI-Powered Code Analysis"},
	}

	runes := []rune(insights)
	if len(runes) <= descriptionLimit {
		embed.Description = insights
		return embed
	}

	embed.Description = string(runes[:descriptionSplit])
	embed.Fields = []DiscordField{{Name: "Continued...", Value: string(runes[descriptionSplit:descriptionLimit])}}
	rest := runes[descriptionLimit:]
	if len(rest) > fieldValueLimit {
		rest = rest[:fieldValueLimit]
	}
	embed.Fields = append(embed.Fields, DiscordField{Name: "More...", Value: string(rest)})
	return embed
}

func top(entries []models.RankedEntry, n int) []models.RankedEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
