// Package client — типизированный HTTP-клиент к helpdesk API.
// Реализует flow.API; ошибки бэкенда маппятся на сентинелы internal/errs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/it-helpdesk/helpdesk-service/internal/errs"
	"github.com/it-helpdesk/helpdesk-service/internal/flow"
	"github.com/it-helpdesk/helpdesk-service/internal/model"
)

const userEmailHeader = "X-User-Email"

var _ flow.API = (*Client)(nil)

type Client struct {
	baseURL    string
	userEmail  string
	httpClient *http.Client
}

// New возвращает клиент. userEmail уходит в заголовок X-User-Email и
// определяет доступ к админским маршрутам.
func New(baseURL, userEmail string) *Client {
	return &Client{
		baseURL:   baseURL,
		userEmail: userEmail,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Problems(ctx context.Context, cr flow.Criteria) ([]model.Problem, error) {
	q := url.Values{}
	if cr.Status != "" {
		q.Set("status", string(cr.Status))
	}
	if cr.Category != "" {
		q.Set("category", string(cr.Category))
	}
	if cr.Search != "" {
		q.Set("search", cr.Search)
	}
	path := "/api/problems"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var items []model.Problem
	if err := c.do(ctx, http.MethodGet, path, nil, &items, nil); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Problem(ctx context.Context, id string) (*model.Problem, error) {
	var p model.Problem
	err := c.do(ctx, http.MethodGet, "/api/problems/"+url.PathEscape(id), nil, &p, map[int]error{
		http.StatusNotFound: errs.ErrProblemNotFound,
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProblem(ctx context.Context, d flow.ProblemDraft) (*model.Problem, error) {
	body := map[string]interface{}{
		"title":       d.Title,
		"description": d.Description,
		"category":    string(d.Category),
		"attachments": emptyIfNil(d.Attachments),
		"created_by":  d.CreatedBy,
	}
	var p model.Problem
	if err := c.do(ctx, http.MethodPost, "/api/problems", body, &p, nil); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProblem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/problems/"+url.PathEscape(id), nil, nil, map[int]error{
		http.StatusNotFound: errs.ErrProblemNotFound,
	})
}

// Instruction возвращает (nil, nil), когда инструкции у заявки ещё нет.
func (c *Client) Instruction(ctx context.Context, problemID string) (*model.Instruction, error) {
	var ins model.Instruction
	err := c.do(ctx, http.MethodGet, "/api/instructions/"+url.PathEscape(problemID), nil, &ins, map[int]error{
		http.StatusNotFound: errs.ErrInstructionNotFound,
	})
	if err != nil {
		if err == errs.ErrInstructionNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ins, nil
}

func (c *Client) CreateInstruction(ctx context.Context, d flow.InstructionDraft) (*model.Instruction, error) {
	body := map[string]interface{}{
		"problem_id":       d.ProblemID,
		"instruction_text": d.InstructionText,
		"images":           emptyIfNil(d.Images),
		"created_by":       d.CreatedBy,
	}
	var ins model.Instruction
	err := c.do(ctx, http.MethodPost, "/api/instructions", body, &ins, map[int]error{
		http.StatusNotFound: errs.ErrProblemNotFound,
		http.StatusConflict: errs.ErrInstructionExists,
	})
	if err != nil {
		return nil, err
	}
	return &ins, nil
}

func (c *Client) DeleteInstruction(ctx context.Context, problemID string) error {
	return c.do(ctx, http.MethodDelete, "/api/instructions/"+url.PathEscape(problemID), nil, nil, map[int]error{
		http.StatusNotFound: errs.ErrInstructionNotFound,
	})
}

func (c *Client) Admins(ctx context.Context) ([]model.Admin, error) {
	var items []model.Admin
	if err := c.do(ctx, http.MethodGet, "/api/admins", nil, &items, nil); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) AddAdmin(ctx context.Context, d flow.AdminDraft) (*model.Admin, error) {
	body := map[string]interface{}{
		"email":    d.Email,
		"name":     d.Name,
		"added_by": d.AddedBy,
	}
	var a model.Admin
	err := c.do(ctx, http.MethodPost, "/api/admins", body, &a, map[int]error{
		http.StatusBadRequest: errs.ErrAdminExists,
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAdmin(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodDelete, "/api/admins/"+url.PathEscape(email), nil, nil, map[int]error{
		http.StatusBadRequest: errs.ErrLastAdmin,
		http.StatusNotFound:   errs.ErrAdminNotFound,
	})
}

func (c *Client) CheckAdmin(ctx context.Context, email string) (bool, error) {
	var out struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/check-admin/"+url.PathEscape(email), nil, &out, nil); err != nil {
		return false, err
	}
	return out.IsAdmin, nil
}

// Upload отправляет файл и возвращает непрозрачный токен вложения.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setIdentity(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", apiError(resp)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Token, nil
}

// do выполняет запрос и декодирует JSON-ответ. statusErrs переводит коды
// ответа в сентинелы домена; остальные не-2xx считаются транспортной ошибкой.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}, statusErrs map[int]error) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setIdentity(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if sentinel, ok := statusErrs[resp.StatusCode]; ok {
		return sentinel
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) setIdentity(req *http.Request) {
	if c.userEmail != "" {
		req.Header.Set(userEmailHeader, c.userEmail)
	}
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("api: %s (status %d)", payload.Error, resp.StatusCode)
	}
	return fmt.Errorf("api: unexpected status %d", resp.StatusCode)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
