package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/marchalgreen/Rundeklar-sub002/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendSessionSummary posts the summary of an ended session.
func (s *Notifier) SendSessionSummary(summary notifier.SessionSummary, dryRun bool) (string, error) {
	_, ts, err := s.sendMessage(s.formatSessionSummary(summary), dryRun)
	return ts, err
}

func (s *Notifier) FormatSessionSummary(summary notifier.SessionSummary) (any, error) {
	return s.formatSessionSummary(summary), nil
}

// formatSessionSummary creates the Slack message for an ended session using Block Kit.
func (s *Notifier) formatSessionSummary(summary notifier.SessionSummary) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏸 Training ended 🏸", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	date := summary.Date
	if d, err := time.Parse("2006-01-02", firstN(summary.Date, 10)); err == nil {
		date = d.Format("Monday 02 Jan 2006")
	}
	detailsText := fmt.Sprintf("Date: %s\nSeason: %s\nCheck-ins: %d\nMatches: %d", date, summary.Season, summary.CheckIns, summary.Matches)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	if len(summary.Groups) > 0 {
		var lines []string
		for _, g := range summary.Groups {
			lines = append(lines, fmt.Sprintf("• %s: %d", g.Group, g.CheckIns))
		}
		groupsText := "Attendance by group:\n" + strings.Join(lines, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", groupsText, true, false), nil, nil))
	} else if summary.CheckIns == 0 {
		contextText := slack.NewTextBlockObject("plain_text", "Nobody checked in.", true, false)
		blocks = append(blocks, slack.NewContextBlock("", contextText))
	}

	return slack.NewBlockMessage(blocks...)
}

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
