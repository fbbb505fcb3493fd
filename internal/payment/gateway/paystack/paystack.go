package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/itfy/evoting/internal/config"
	"github.com/itfy/evoting/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// SignatureHeader carries the HMAC of the webhook body.
const SignatureHeader = "X-Paystack-Signature"

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

type Gateway struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	client        *http.Client
	log           *zap.Logger
}

func New(p Params) domain.Gateway {
	timeout := p.Config.Gateway.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	webhookSecret := p.Config.Gateway.WebhookSecret
	if webhookSecret == "" {
		webhookSecret = p.Config.Gateway.SecretKey
	}
	return &Gateway{
		baseURL:       strings.TrimRight(p.Config.Gateway.BaseURL, "/"),
		secretKey:     p.Config.Gateway.SecretKey,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: timeout},
		log:           p.Log.Named("gateway.paystack"),
	}
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	ID              int64      `json:"id"`
	Status          string     `json:"status"`
	Amount          int64      `json:"amount"`
	Channel         string     `json:"channel"`
	PaidAt          *time.Time `json:"paid_at"`
	GatewayResponse string     `json:"gateway_response"`
}

func (g *Gateway) Initialize(ctx context.Context, req domain.GatewayInitRequest) (domain.GatewayInitResponse, error) {
	body := map[string]interface{}{
		"email":     req.Email,
		"amount":    req.Amount,
		"reference": req.Reference,
		"metadata":  req.Metadata,
	}
	if req.Currency != "" {
		body["currency"] = req.Currency
	}

	var data initializeData
	if err := g.call(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return domain.GatewayInitResponse{}, err
	}

	return domain.GatewayInitResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (g *Gateway) Verify(ctx context.Context, reference string) (domain.GatewayVerification, error) {
	var data verifyData
	if err := g.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return domain.GatewayVerification{}, err
	}

	status := strings.ToLower(strings.TrimSpace(data.Status))
	switch status {
	case "success":
		status = domain.GatewayStatusSuccess
	case "failed":
		status = domain.GatewayStatusFailed
	case "abandoned":
		status = domain.GatewayStatusAbandoned
	default:
		status = domain.GatewayStatusPending
	}

	return domain.GatewayVerification{
		Status:        status,
		Amount:        data.Amount,
		TransactionID: strconv.FormatInt(data.ID, 10),
		Channel:       data.Channel,
		PaidAt:        data.PaidAt,
		Message:       data.GatewayResponse,
	}, nil
}

func (g *Gateway) Refund(ctx context.Context, transactionID string, amount int64) error {
	body := map[string]interface{}{
		"transaction": transactionID,
		"amount":      amount,
	}
	return g.call(ctx, http.MethodPost, "/refund", body, nil)
}

func (g *Gateway) VerifySignature(payload []byte, signature string) error {
	if g.webhookSecret == "" || signature == "" {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha512.New, []byte(g.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return domain.ErrInvalidSignature
	}
	return nil
}

func (g *Gateway) call(ctx context.Context, method, path string, body map[string]interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("gateway returned %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !envelope.Status {
		return fmt.Errorf("gateway error: %s", envelope.Message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("gateway.paystack",
	fx.Provide(New),
)
