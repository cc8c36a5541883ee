package syncpay

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/resilience"
	"github.com/gustavoo4544-commits/bolacup/internal/usecase"
)

const (
	authTokenPath   = "/api/partner/v1/auth-token"
	cashInPath      = "/api/partner/v1/cash-in"
	transactionPath = "/api/partner/v1/transaction/"

	// Tokens are treated as expired one minute early so in-flight requests
	// never race the provider-side expiry.
	tokenSafetyMargin = 60 * time.Second

	// StatusUnknown is reported when the provider payload carries no status.
	StatusUnknown = "unknown"

	// The provider requires a CPF but the product never collects one.
	// Known limitation carried over from the partner integration.
	placeholderCPF = "00000000000"

	emailDomain = "bolacup.app"
)

var (
	ErrAuthentication = stderrors.New("syncpay authentication failed")
	ErrInvalidAmount  = stderrors.New("syncpay charge amount must be greater than zero")

	errSyncPayTransient = crerr.New("syncpay transient failure")
	nonDigitsRegex      = regexp.MustCompile(`\D+`)
)

// ProviderError carries a non-success provider response upstream.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("syncpay provider status=%d body=%s", e.StatusCode, e.Body)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	ClientID       string
	ClientSecret   string
	WebhookURL     string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	TokenCache     TokenCache
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	clientID       string
	clientSecret   string
	webhookURL     string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	tokens         TokenCache
	flight         resilience.SingleFlight
	now            func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	tokens := cfg.TokenCache
	if tokens == nil {
		tokens = NewMemoryTokenCache()
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		clientID:       strings.TrimSpace(cfg.ClientID),
		clientSecret:   strings.TrimSpace(cfg.ClientSecret),
		webhookURL:     strings.TrimSpace(cfg.WebhookURL),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		tokens:         tokens,
		now:            time.Now,
	}
}

// CreateCharge opens a PIX charge for amount BRL. The amount is validated
// before any network traffic so a bad menu value never reaches the provider.
func (c *Client) CreateCharge(ctx context.Context, amount int64, description string, customer usecase.PaymentCustomer) (usecase.PaymentCharge, error) {
	if amount <= 0 {
		return usecase.PaymentCharge{}, ErrInvalidAmount
	}

	token, err := c.authToken(ctx)
	if err != nil {
		return usecase.PaymentCharge{}, err
	}

	digits := nonDigitsRegex.ReplaceAllString(customer.Phone, "")
	body := cashInRequest{
		Amount:      amount,
		Description: description,
		WebhookURL:  c.webhookURL,
		Client: cashInClient{
			Name:  customer.Name,
			CPF:   placeholderCPF,
			Email: digits + "@" + emailDomain,
			Phone: customer.Phone,
		},
	}

	var out cashInResponse
	raw, err := c.doJSON(ctx, http.MethodPost, cashInPath, body, token, &out)
	if err != nil {
		return usecase.PaymentCharge{}, fmt.Errorf("create charge amount=%d: %w", amount, err)
	}
	if out.PixCode == "" || out.Identifier == "" {
		return usecase.PaymentCharge{}, &ProviderError{StatusCode: http.StatusOK, Body: abbreviateBody(raw)}
	}

	return usecase.PaymentCharge{PixCode: out.PixCode, Identifier: out.Identifier}, nil
}

// CheckStatus reads the provider's current view of a charge. A payload with
// no status field reports StatusUnknown rather than failing.
func (c *Client) CheckStatus(ctx context.Context, identifier string) (usecase.PaymentStatus, error) {
	if strings.TrimSpace(identifier) == "" {
		return usecase.PaymentStatus{}, fmt.Errorf("charge identifier is required")
	}

	token, err := c.authToken(ctx)
	if err != nil {
		return usecase.PaymentStatus{}, err
	}

	var out transactionResponse
	if _, err := c.doJSON(ctx, http.MethodGet, transactionPath+identifier, nil, token, &out); err != nil {
		return usecase.PaymentStatus{}, fmt.Errorf("check status identifier=%s: %w", identifier, err)
	}

	status := strings.TrimSpace(out.Data.Status)
	if status == "" {
		status = StatusUnknown
	}

	return usecase.PaymentStatus{Status: status, Amount: out.Data.Amount}, nil
}

// authToken returns a cached token or performs the credentials exchange.
// Concurrent refreshes collapse into one provider call.
func (c *Client) authToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("%w: client credentials are not configured", ErrAuthentication)
	}

	if token, ok := c.tokens.Get(c.now()); ok {
		return token, nil
	}

	out, err, _ := c.flight.Do("auth-token", func() (any, error) {
		if token, ok := c.tokens.Get(c.now()); ok {
			return token, nil
		}

		body := authRequest{ClientID: c.clientID, ClientSecret: c.clientSecret}
		var resp authResponse
		if _, err := c.doJSON(ctx, http.MethodPost, authTokenPath, body, "", &resp); err != nil {
			return nil, fmt.Errorf("exchange credentials: %w", err)
		}
		if resp.AccessToken == "" {
			return nil, fmt.Errorf("%w: provider returned no access token", ErrAuthentication)
		}

		expiresAt := c.now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenSafetyMargin)
		c.tokens.Set(resp.AccessToken, expiresAt)
		return resp.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	token, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("unexpected token payload type %T", out)
	}

	return token, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, bearer string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "syncpay circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: payment provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	var payload []byte
	if body != nil {
		encoded, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}

	raw, err := c.executeRequest(ctx, method, c.baseURL+path, payload, bearer)
	if c.circuitEnabled {
		if err != nil && isSyncPayCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return nil, err
	}

	if target != nil {
		if err := sonic.Unmarshal(raw, target); err != nil {
			return nil, fmt.Errorf("decode provider payload: %w", err)
		}
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, method, fullURL string, payload []byte, bearer string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if payload != nil {
			req.Header.Set("content-type", "application/json")
		}
		if bearer != "" {
			req.Header.Set("authorization", "Bearer "+bearer)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errSyncPayTransient, c.sanitize(err.Error()))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSyncPayTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				c.tokens.Clear()
				return nil, fmt.Errorf("%w: provider status=%d", ErrAuthentication, resp.StatusCode)
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: %s", errSyncPayTransient, (&ProviderError{StatusCode: resp.StatusCode, Body: abbreviateBody(raw)}).Error())
			default:
				return nil, &ProviderError{StatusCode: resp.StatusCode, Body: abbreviateBody(raw)}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "syncpay request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if c.clientSecret != "" {
		value = strings.ReplaceAll(value, c.clientSecret, "REDACTED")
	}
	return value
}

func isSyncPayCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errSyncPayTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

type authRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type cashInClient struct {
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type cashInRequest struct {
	Amount      int64        `json:"amount"`
	Description string       `json:"description"`
	WebhookURL  string       `json:"webhook_url"`
	Client      cashInClient `json:"client"`
}

type cashInResponse struct {
	PixCode    string `json:"pix_code"`
	Identifier string `json:"identifier"`
}

type transactionResponse struct {
	Data struct {
		Status string `json:"status"`
		Amount int64  `json:"amount"`
	} `json:"data"`
}
