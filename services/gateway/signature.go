// File: services/gateway/signature.go
package gateway

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// signCreateRequest signs the five core fields of a create-link payload the
// way the gateway expects: alphabetical key=value pairs joined with '&',
// HMAC-SHA256 under the checksum key, hex encoded.
func signCreateRequest(checksumKey string, req CreateLinkRequest) string {
	raw := fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		req.Amount, req.CancelURL, req.Description, req.OrderCode, req.ReturnURL)
	mac := hmac.New(sha256.New, []byte(checksumKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook checks the x-payos-signature header against the raw webhook
// body. The signed form is the body's JSON with top-level keys sorted
// ascending and values serialized compactly; comparison is constant time.
func VerifyWebhook(checksumKey string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	canonical, err := canonicalJSON(body)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(checksumKey))
	mac.Write(canonical)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// canonicalJSON rebuilds a JSON object with its top-level keys in ascending
// order and all values compacted. Nested objects keep their original key
// order; only the top level is reordered.
func canonicalJSON(body []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("webhook body is not a JSON object: %w", err)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		if err := json.Compact(&buf, fields[k]); err != nil {
			return nil, fmt.Errorf("compact webhook value for %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
