// Package quizapi: client untuk endpoint /api/v1/quiz.
package quizapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"coursemarket_backend/internals/features/quizzes/ids"
	"coursemarket_backend/internals/features/quizzes/scoring"
)

const defaultTimeout = 10 * time.Second

type envelope[T any] struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code"`
	Errors    map[string][]string `json:"errors"`
	Data      T                   `json:"data"`
	Count     int                 `json:"count"`
}

type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *fiber.Client
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New: baseURL tanpa /api/v1, mis. "http://localhost:3000".
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: defaultTimeout,
		http: &fiber.Client{
			JSONEncoder: sonic.Marshal,
			JSONDecoder: sonic.Unmarshal,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

/* =========================================================
   Endpoints
========================================================= */

// GetQuiz → quiz untuk dikerjakan. Kalau user sudah attempt, error
// *AlreadyAttemptedError membawa attempt lama.
func (c *Client) GetQuiz(ctx context.Context, quizID string) (*Quiz, error) {
	id, err := ids.Clean(quizID)
	if err != nil {
		return nil, err
	}
	var out envelope[takeResponse]
	if err := c.do(ctx, fiber.MethodGet, "/api/v1/quiz/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	if out.Data.HasAttempted {
		return nil, &AlreadyAttemptedError{Attempt: out.Data.Attempt}
	}
	if out.Data.Quiz == nil {
		return nil, errors.New("quiz api: response without quiz")
	}
	return out.Data.Quiz, nil
}

func (c *Client) Submit(ctx context.Context, quizID string, req SubmitRequest) (*ScoreBreakdown, error) {
	id, err := ids.Clean(quizID)
	if err != nil {
		return nil, err
	}
	if req.Answers == nil {
		req.Answers = []scoring.Answer{}
	}
	var out envelope[ScoreBreakdown]
	if err := c.do(ctx, fiber.MethodPost, "/api/v1/quiz/"+id.String()+"/submit", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) ListAttempts(ctx context.Context, quizID string) ([]Attempt, error) {
	id, err := ids.Clean(quizID)
	if err != nil {
		return nil, err
	}
	var out envelope[[]Attempt]
	if err := c.do(ctx, fiber.MethodGet, "/api/v1/quiz/"+id.String()+"/attempts", nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []Attempt{}
	}
	return out.Data, nil
}

func (c *Client) CreateQuiz(ctx context.Context, req CreateQuizRequest) (*Quiz, error) {
	var out envelope[Quiz]
	if err := c.do(ctx, fiber.MethodPost, "/api/v1/quiz/create", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

/* =========================================================
   Transport
========================================================= */

func (c *Client) timeoutFor(ctx context.Context) time.Duration {
	d := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < d {
			d = left
		}
	}
	return d
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var a *fiber.Agent
	url := c.baseURL + path
	switch method {
	case fiber.MethodPost:
		a = c.http.Post(url)
	default:
		a = c.http.Get(url)
	}
	a.Timeout(c.timeoutFor(ctx))
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if body != nil {
		a.JSON(body)
	}

	status, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("quiz api: %s %s: %w", method, path, errors.Join(errs...))
	}
	if status >= 200 && status < 300 {
		if err := sonic.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("quiz api: decode %s: %w", path, err)
		}
		return nil
	}
	return decodeError(status, raw)
}

func decodeError(status int, raw []byte) error {
	var env envelope[*Attempt]
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return &APIError{Status: status, Message: strings.TrimSpace(string(raw))}
	}
	if status == fiber.StatusConflict {
		return &AlreadyAttemptedError{Attempt: env.Data}
	}
	return &APIError{
		Status:  status,
		Code:    env.ErrorCode,
		Message: env.Message,
		Errors:  env.Errors,
	}
}
