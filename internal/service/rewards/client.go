package rewards

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
)

const (
	defaultCallTimeout = 3 * time.Second
	maxErrorBodyBytes  = 4 << 10
)

// Config задаёт параметры HTTP-клиента провайдера вознаграждений.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout ограничивает каждый вызов провайдера.
	Timeout time.Duration
	// HTTPClient позволяет подменить транспорт; Transport оборачивается авторизацией и трассировкой.
	HTTPClient *http.Client
	Logger     *log.Entry
}

// Client: HTTP-реализация domain.RewardsGateway. Повторов не делает.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *log.Entry
}

// NewClient создаёт клиент и проверяет конфигурацию.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("rewards base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse rewards base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("rewards base url must be http(s), got %q", cfg.BaseURL)
	}
	if cfg.APIKey == "" {
		return nil, errors.New("rewards api key is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.WithField("component", "rewards-client")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	var transport http.RoundTripper = http.DefaultTransport
	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		*httpClient = *cfg.HTTPClient
		if cfg.HTTPClient.Transport != nil {
			transport = cfg.HTTPClient.Transport
		}
	}
	httpClient.Transport = otelhttp.NewTransport(
		newAuthTransport(transport, cfg.APIKey, logger),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "rewards " + r.Method + " " + r.URL.Path
		}),
	)

	return &Client{
		baseURL: base.String(),
		http:    httpClient,
		timeout: timeout,
		logger:  logger,
	}, nil
}

type profileRequest struct {
	UserID      string      `json:"userId"`
	TotalOrders int64       `json:"totalOrders"`
	TotalSpent  json.Number `json:"totalSpent"`
}

type sessionItem struct {
	SKU      string      `json:"sku"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int32       `json:"quantity"`
}

type sessionRequest struct {
	UserID    string        `json:"userId"`
	Items     []sessionItem `json:"items"`
	CartTotal json.Number   `json:"cartTotal"`
}

type rewardsResponse struct {
	DiscountAmount      decimal.Decimal `json:"discountAmount"`
	AppliedRewards      []string        `json:"appliedRewards"`
	LoyaltyPointsUsed   int64           `json:"loyaltyPointsUsed"`
	LoyaltyPointsEarned int64           `json:"loyaltyPointsEarned"`
	Message             string          `json:"message"`
}

type confirmRequest struct {
	TotalAmount json.Number `json:"totalAmount"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(domain.MoneyPlaces))
}

// SyncProfile выполняет PUT /v1/profiles/{userId}.
func (c *Client) SyncProfile(ctx context.Context, user domain.User) error {
	body := profileRequest{
		UserID:      user.ID,
		TotalOrders: user.TotalOrders,
		TotalSpent:  money(user.TotalSpent),
	}
	return c.do(ctx, domain.GatewayOpSyncProfile, http.MethodPut, "/v1/profiles/"+url.PathEscape(user.ID), body, nil)
}

// EvaluateSession выполняет POST /v1/sessions.
func (c *Client) EvaluateSession(ctx context.Context, userID string, items []domain.CartLine) (domain.RewardsDecision, error) {
	body := sessionRequest{
		UserID:    userID,
		Items:     make([]sessionItem, 0, len(items)),
		CartTotal: money(domain.Subtotal(items)),
	}
	for _, item := range items {
		body.Items = append(body.Items, sessionItem{
			SKU:      item.SKU,
			Name:     item.Name,
			Price:    json.Number(item.Price.String()),
			Quantity: item.Quantity,
		})
	}

	var resp rewardsResponse
	if err := c.do(ctx, domain.GatewayOpEvaluateSession, http.MethodPost, "/v1/sessions", body, &resp); err != nil {
		return domain.RewardsDecision{}, err
	}

	return domain.RewardsDecision{
		DiscountAmount:      resp.DiscountAmount,
		AppliedRewards:      resp.AppliedRewards,
		LoyaltyPointsUsed:   resp.LoyaltyPointsUsed,
		LoyaltyPointsEarned: resp.LoyaltyPointsEarned,
		Message:             resp.Message,
	}, nil
}

// ConfirmLoyalty выполняет POST /v1/loyalty/{userId}/confirm.
func (c *Client) ConfirmLoyalty(ctx context.Context, userID string, finalTotal decimal.Decimal) error {
	body := confirmRequest{TotalAmount: money(finalTotal)}
	return c.do(ctx, domain.GatewayOpConfirmLoyalty, http.MethodPost, "/v1/loyalty/"+url.PathEscape(userID)+"/confirm", body, nil)
}

func (c *Client) do(ctx context.Context, op domain.GatewayOperation, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return &domain.GatewayError{Op: op, Kind: domain.GatewayUnexpected, Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &domain.GatewayError{Op: op, Kind: domain.GatewayUnexpected, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &domain.GatewayError{
			Op:         op,
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return classifyTransportError(op, err)
		}
		return &domain.GatewayError{Op: op, Kind: domain.GatewayUnexpected, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

// kindForStatus: перегрузка и проблемы прокси считаются временными,
// остальные 4xx: отказом провайдера, остальные 5xx: неожиданной ошибкой.
func kindForStatus(code int) domain.GatewayErrorKind {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return domain.GatewayTransient
	}
	if code >= 400 && code < 500 {
		return domain.GatewayRejected
	}
	return domain.GatewayUnexpected
}

func classifyTransportError(op domain.GatewayOperation, err error) *domain.GatewayError {
	// *url.Error сам реализует net.Error, поэтому смотрим на вложенную причину.
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &domain.GatewayError{Op: op, Kind: domain.GatewayTransient, Message: "call timed out or was canceled", Err: err}
	case errors.As(cause, &netErr), errors.Is(cause, io.EOF), errors.Is(cause, io.ErrUnexpectedEOF):
		return &domain.GatewayError{Op: op, Kind: domain.GatewayTransient, Message: "network error", Err: err}
	default:
		return &domain.GatewayError{Op: op, Kind: domain.GatewayUnexpected, Err: err}
	}
}

var _ domain.RewardsGateway = (*Client)(nil)
