// Package gateway implements the client for the external AI move service.
//
// The gateway is deliberately narrow: per round it receives the public
// board, the AI hand, the opposing hand *size*, and the scores, and it
// returns nothing but the AI's chosen card (plus, when the card has no
// valid row, the row it elects to take). The engine stays the sole
// authority over board and score mutation; a gateway that echoed state
// back would be ignored by construction.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Sentinel errors matched by the session's fallback policy.
var (
	// ErrUnavailable covers network failures and timeouts after the
	// configured retries are exhausted.
	ErrUnavailable = errors.New("ai gateway unavailable")

	// ErrInvalidResponse covers malformed payloads and card choices not
	// present in the AI's hand.
	ErrInvalidResponse = errors.New("invalid ai gateway response")
)

// Algorithm names accepted by the move service.
const (
	AlgorithmExpectiminimax = "expectiminimax"
	AlgorithmMCTS           = "mcts"
)

// MoveRequest is the per-round request payload. The human hand is
// represented by size only so the gateway cannot condition on hidden
// intent.
type MoveRequest struct {
	Board         [][]int `json:"board"`
	AIHand        []int   `json:"aiHand"`
	HumanHandSize int     `json:"humanHandSize"`
	Scores        Scores  `json:"scores"`
	Algorithm     string  `json:"algorithm"`
}

// Scores carries both running totals.
type Scores struct {
	Human int `json:"human"`
	AI    int `json:"ai"`
}

// MoveResponse is the gateway's answer: the chosen card and, only when
// that card undercuts every row, the row the AI elects to take.
type MoveResponse struct {
	ChosenCardNumber int  `json:"chosenCardNumber"`
	TakeRowNumber    *int `json:"takeRowNumber,omitempty"`
}

// MoveProvider is the session-facing contract. Tests substitute fakes.
type MoveProvider interface {
	RequestMove(ctx context.Context, req MoveRequest) (MoveResponse, error)
}

// Client is the HTTP implementation of MoveProvider.
type Client struct {
	baseURL string
	http    *http.Client
	retries int
	backoff time.Duration
	log     *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithRetries sets the number of retries after the first attempt.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithTimeout bounds each individual request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithBackoff sets the initial retry backoff (doubled per attempt).
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithLogger attaches a logger entry.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a gateway client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		retries: 2,
		backoff: 250 * time.Millisecond,
		log:     logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestMove posts the round request and validates the answer.
// Network errors and timeouts are retried up to the configured count with
// doubling backoff; a malformed or out-of-hand response is retried once.
// The returned error wraps ErrUnavailable or ErrInvalidResponse.
func (c *Client) RequestMove(ctx context.Context, req MoveRequest) (MoveResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return MoveResponse{}, fmt.Errorf("%w: encode request: %v", ErrInvalidResponse, err)
	}

	var lastErr error
	invalidRetried := false
	backoff := c.backoff

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return MoveResponse{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, err := c.post(ctx, body)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			c.log.WithError(err).WithField("attempt", attempt).Warn("ai gateway request failed")
			continue
		}

		if err := validate(resp, req.AIHand); err != nil {
			lastErr = err
			c.log.WithError(err).WithField("attempt", attempt).Warn("ai gateway response rejected")
			if invalidRetried {
				return MoveResponse{}, lastErr
			}
			invalidRetried = true
			continue
		}
		return resp, nil
	}
	return MoveResponse{}, lastErr
}

func (c *Client) post(ctx context.Context, body []byte) (MoveResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return MoveResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return MoveResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return MoveResponse{}, fmt.Errorf("ai gateway returned status %d", httpResp.StatusCode)
	}

	var resp MoveResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		// A body that does not decode is an invalid response, not an
		// unavailable service.
		return MoveResponse{ChosenCardNumber: -1}, nil
	}
	return resp, nil
}

// validate checks that the chosen card is actually in the AI's hand and
// that any row choice addresses a real row.
func validate(resp MoveResponse, aiHand []int) error {
	inHand := false
	for _, n := range aiHand {
		if n == resp.ChosenCardNumber {
			inHand = true
			break
		}
	}
	if !inHand {
		return fmt.Errorf("%w: card %d not in ai hand", ErrInvalidResponse, resp.ChosenCardNumber)
	}
	if resp.TakeRowNumber != nil && (*resp.TakeRowNumber < 0 || *resp.TakeRowNumber > 3) {
		return fmt.Errorf("%w: take row %d out of range", ErrInvalidResponse, *resp.TakeRowNumber)
	}
	return nil
}
