// File: services/gateway/client.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/config"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/avast/retry-go"
)

// maxDescriptionLen is the gateway's hard cap on the payment description.
const maxDescriptionLen = 25

const requestTimeout = 10 * time.Second

// Client talks to the hosted-checkout payment gateway.
type Client interface {
	// CreateLink registers a payment attempt and returns the hosted
	// checkout handle for the customer.
	CreateLink(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error)
	// CancelLink voids a pending payment link. Best effort: an already
	// settled or unknown link is not an error worth failing a flow over.
	CancelLink(ctx context.Context, orderCode int64, reason string) error
	// VerifySignature checks a webhook body against its signature header.
	VerifySignature(body []byte, signature string) bool
}

// HTTPClient is the production client, authenticated with the merchant
// credentials from configuration.
type HTTPClient struct {
	BaseURL     string
	ClientID    string
	APIKey      string
	ChecksumKey string
	HTTP        *http.Client
}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		BaseURL:     strings.TrimRight(config.AppConfig.GatewayBaseURL, "/"),
		ClientID:    config.AppConfig.GatewayClientID,
		APIKey:      config.AppConfig.GatewayAPIKey,
		ChecksumKey: config.AppConfig.GatewayChecksumKey,
		HTTP:        &http.Client{Timeout: requestTimeout},
	}
}

func (c *HTTPClient) CreateLink(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error) {
	if req.OrderCode <= 0 || req.Amount <= 0 {
		return nil, utils.NewError(utils.KindValidation, "INVALID_PAYMENT_LINK", "order code and amount must be positive")
	}
	if len(req.Description) > maxDescriptionLen {
		req.Description = req.Description[:maxDescriptionLen]
	}
	req.Signature = signCreateRequest(c.ChecksumKey, req)

	var out CreateLinkResponse
	err := retry.Do(
		func() error {
			data, err := c.post(ctx, "/v2/payment-requests", req)
			if err != nil {
				return err
			}
			out = CreateLinkResponse{
				PaymentLinkID: data.PaymentLinkID,
				CheckoutURL:   data.CheckoutURL,
				QRCode:        data.QRCode,
			}
			return nil
		},
		// One retry, and only for transport failures: rejections are
		// marked unrecoverable by post.
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CancelLink(ctx context.Context, orderCode int64, reason string) error {
	body := map[string]string{"cancellationReason": reason}
	_, err := c.post(ctx, fmt.Sprintf("/v2/payment-requests/%d/cancel", orderCode), body)
	return err
}

func (c *HTTPClient) VerifySignature(body []byte, signature string) bool {
	return VerifyWebhook(c.ChecksumKey, body, signature)
}

// post sends an authenticated JSON request and unwraps the gateway envelope.
// Transport errors come back as-is (recoverable); gateway rejections are
// wrapped unrecoverable so callers' retry loops leave them alone.
func (c *HTTPClient) post(ctx context.Context, path string, payload interface{}) (*createLinkData, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("marshal gateway payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("build gateway request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.ClientID)
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, 1<<20)
	var envelope apiEnvelope
	if err := json.NewDecoder(limited).Decode(&envelope); err != nil {
		return nil, retry.Unrecoverable(utils.WrapError(utils.KindGateway, "GATEWAY_ERROR", "gateway returned an unreadable response", err))
	}
	if envelope.Code != "00" {
		return nil, retry.Unrecoverable(utils.NewError(utils.KindGateway, "GATEWAY_REJECTED",
			fmt.Sprintf("gateway rejected the request: %s (%s)", envelope.Desc, envelope.Code)))
	}
	if envelope.Data == nil {
		return nil, retry.Unrecoverable(utils.NewError(utils.KindGateway, "GATEWAY_ERROR", "gateway response is missing data"))
	}
	return envelope.Data, nil
}
