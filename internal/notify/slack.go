package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"coincheck_bot/internal/models"

	"github.com/bytedance/sonic"
)

// Slack posts block-kit messages to an incoming webhook.
type Slack struct {
	http       *http.Client
	webhookURL string
}

func NewSlack(webhookURL string) *Slack {
	return &Slack{
		http:       &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

func mrkdwn(text string) slackText { return slackText{Type: "mrkdwn", Text: text} }

func (s *Slack) NotifyOrder(ctx context.Context, o models.Order) error {
	return s.post(ctx, slackPayload{Blocks: []slackBlock{
		{Type: "section", Text: ptr(mrkdwn(":coin: *Order executed*"))},
		{Type: "section", Fields: []slackText{
			mrkdwn("*Pair:* " + o.Pair),
			mrkdwn("*Operation:* " + string(o.OrderType)),
			mrkdwn("*Amount:* " + orderAmount(o)),
		}},
	}})
}

func (s *Slack) NotifySummary(ctx context.Context, title string, sum models.Summary) error {
	text := fmt.Sprintf(":moneybag: *%s*\n\n *Total invested:* %s JPY\n *Total JPY value:* %s JPY\n *P/L:* %s JPY",
		title, yen(sum.TotalInvested), yen(sum.TotalJPYValue), yen(sum.PL))
	return s.post(ctx, slackPayload{Blocks: []slackBlock{
		{Type: "section", Text: ptr(mrkdwn(text))},
	}})
}

func (s *Slack) post(ctx context.Context, payload slackPayload) error {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("slack: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		rb, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack: http %d: %s", resp.StatusCode, string(rb))
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
