package gateway

// LinkItem is one order line shown on the hosted checkout page.
type LinkItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// CreateLinkRequest is the payload for creating a hosted payment link.
// OrderCode is the merchant-side numeric id the gateway echoes back in
// webhooks; it must be unique per payment attempt.
type CreateLinkRequest struct {
	OrderCode   int64      `json:"orderCode"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	Items       []LinkItem `json:"items,omitempty"`
	ReturnURL   string     `json:"returnUrl"`
	CancelURL   string     `json:"cancelUrl"`
	BuyerName   string     `json:"buyerName,omitempty"`
	BuyerEmail  string     `json:"buyerEmail,omitempty"`
	Signature   string     `json:"signature"`
}

// CreateLinkResponse carries the hosted checkout handle back to the caller.
type CreateLinkResponse struct {
	PaymentLinkID string `json:"paymentLinkId"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
}

// apiEnvelope is the gateway's uniform response wrapper. Code "00" means
// success; anything else is a rejection with a human-readable desc.
type apiEnvelope struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data *createLinkData `json:"data"`
}

type createLinkData struct {
	PaymentLinkID string `json:"paymentLinkId"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
	Status        string `json:"status"`
}

// WebhookPayload is the body the gateway posts when a payment settles or
// fails. Code "00" on the inner data means the transaction succeeded.
type WebhookPayload struct {
	Code    string      `json:"code"`
	Desc    string      `json:"desc"`
	Success bool        `json:"success"`
	Data    WebhookData `json:"data"`
}

// WebhookData identifies the transaction the webhook refers to.
type WebhookData struct {
	OrderCode           int64  `json:"orderCode"`
	Amount              int64  `json:"amount"`
	Description         string `json:"description"`
	Reference           string `json:"reference"`
	TransactionDateTime string `json:"transactionDateTime"`
	PaymentLinkID       string `json:"paymentLinkId"`
	Code                string `json:"code"`
	Desc                string `json:"desc"`
}

// Succeeded reports whether the webhook describes a settled payment.
func (p *WebhookPayload) Succeeded() bool {
	return p.Code == "00" && p.Data.Code == "00"
}
