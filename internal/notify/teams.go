package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/it-helpdesk/helpdesk-service/internal/model"
	"github.com/rs/zerolog"
)

// ProblemNotifier — интерфейс для уведомлений о новых заявках
// (для подмены моком в тестах).
type ProblemNotifier interface {
	NotifyProblemAsync(p *model.Problem)
}

// TeamsClient отправляет карточку о новой заявке в incoming webhook канала
// Teams (best-effort, не блокирует API).
type TeamsClient struct {
	webhookURL string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewTeamsClient возвращает клиент. Если webhookURL пустой, вызовы — no-op.
func NewTeamsClient(webhookURL string, log zerolog.Logger) *TeamsClient {
	return &TeamsClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log,
	}
}

type messageCard struct {
	Type       string `json:"@type"`
	Context    string `json:"@context"`
	Summary    string `json:"summary"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	ThemeColor string `json:"themeColor"`
}

// NotifyProblem отправляет уведомление о заявке в Teams.
func (c *TeamsClient) NotifyProblem(ctx context.Context, p *model.Problem) {
	if c.webhookURL == "" {
		return
	}
	card := messageCard{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		Summary:    "New helpdesk problem",
		Title:      fmt.Sprintf("New problem: %s", p.Title),
		Text:       fmt.Sprintf("**Category:** %s\n\n**Reported by:** %s\n\n%s", p.Category, p.CreatedBy, p.Description),
		ThemeColor: "0078D4",
	}
	body, err := json.Marshal(card)
	if err != nil {
		c.log.Error().Err(err).Msg("notify: marshal card")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		c.log.Error().Err(err).Msg("notify: new request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Msg("notify: request")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Error().Int("status", resp.StatusCode).Str("problem_id", p.ID).Msg("notify: unexpected status")
	}
}

// NotifyProblemAsync вызывает NotifyProblem в отдельной горутине
// (не блокирует ответ API).
func (c *TeamsClient) NotifyProblemAsync(p *model.Problem) {
	if c.webhookURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.NotifyProblem(ctx, p)
	}()
}
