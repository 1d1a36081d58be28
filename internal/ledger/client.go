package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Broodje2/kudos-bot/internal/domain"
	"github.com/Broodje2/kudos-bot/internal/logger"
	"github.com/Broodje2/kudos-bot/internal/metrics"
)

const maxBody = 1 << 20

// Client talks to the kudos ledger service. One HTTP round trip per call,
// no retries and no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("client", "ledger")
	return c
}

// --- wire types ---

type userResponse struct {
	Username string `json:"username"`
}

type upsertUserRequest struct {
	SlackName string `json:"slack_name"`
	SlackID   string `json:"slack_id"`
}

type transactionRequest struct {
	OriginSlackID        string           `json:"origin_slack_id"`
	OriginKudosType      domain.KudosType `json:"origin_kudos_type"`
	DestinationSlackID   string           `json:"destination_slack_id"`
	DestinationKudosType domain.KudosType `json:"destination_kudos_type"`
	Amount               int64            `json:"amount"`
	Reason               string           `json:"reason"`
}

type leaderboardEntry struct {
	SlackID    string `json:"slack_id"`
	TotalKudos int64  `json:"total_kudos"`
}

// GetUser fetches a user by Slack id. The ledger only returns the name.
func (c *Client) GetUser(ctx context.Context, slackID string) (domain.User, error) {
	var out userResponse
	if err := c.do(ctx, "get_user", http.MethodGet, "/user/"+url.PathEscape(slackID), nil, &out); err != nil {
		return domain.User{}, err
	}
	return domain.User{SlackID: slackID, SlackName: out.Username}, nil
}

// UpsertUser creates or renames the user with u.SlackID.
func (c *Client) UpsertUser(ctx context.Context, u domain.User) error {
	body := upsertUserRequest{SlackName: u.SlackName, SlackID: u.SlackID}
	return c.do(ctx, "upsert_user", http.MethodPost, "/user", body, nil)
}

// CreateTransaction records one kudos transfer.
func (c *Client) CreateTransaction(ctx context.Context, tx domain.Transaction) error {
	body := transactionRequest{
		OriginSlackID:        tx.OriginID,
		OriginKudosType:      tx.OriginKind,
		DestinationSlackID:   tx.DestinationID,
		DestinationKudosType: tx.DestinationKind,
		Amount:               tx.Amount,
		Reason:               tx.Reason,
	}
	return c.do(ctx, "create_transaction", http.MethodPost, "/transaction", body, nil)
}

// Leaderboard returns entries in the order the ledger ranks them.
func (c *Client) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var rows []leaderboardEntry
	if err := c.do(ctx, "get_leaderboard", http.MethodGet, "/leaderboard", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.LeaderboardEntry{SlackID: r.SlackID, TotalKudos: r.TotalKudos})
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ledger %s: encode: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("ledger %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordLedgerCall(op, 0, time.Since(start))
		c.log.Warn("ledger call failed", "op", op, "error", err)
		return fmt.Errorf("ledger %s: %w", op, err)
	}
	defer resp.Body.Close()
	metrics.RecordLedgerCall(op, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("ledger %s: read body: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := newStatusError(op, resp.StatusCode, raw)
		c.log.Warn("ledger rejected call", "op", op, "status", resp.StatusCode, "reason", se.Message)
		return se
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ledger %s: decode: %w", op, err)
	}
	return nil
}
