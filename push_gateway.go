package campusgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultPushGatewayURL is the Expo push service endpoint.
const DefaultPushGatewayURL = "https://exp.host/--/api/v2/push/send"

var errMalformedTickets = errors.New("malformed ticket array in gateway response")

// HTTPPushGateway submits chunks to an Expo-shaped push endpoint: a JSON array
// of per-address messages in, `{"data": [tickets]}` out, tickets positionally
// aligned with the request array.
type HTTPPushGateway struct {
	url    string
	client *http.Client
}

// NewHTTPPushGateway describes the newhttppushgateway operation and its observable behavior.
//
// NewHTTPPushGateway may return an error when input validation, dependency calls, or security checks fail.
// NewHTTPPushGateway does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHTTPPushGateway(url string, client *http.Client) *HTTPPushGateway {
	if url == "" {
		url = DefaultPushGatewayURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPPushGateway{
		url:    url,
		client: client,
	}
}

// Send implements [PushGateway].
func (g *HTTPPushGateway) Send(ctx context.Context, messages []GatewayMessage) ([]GatewayTicket, error) {
	body, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("push gateway returned status %d: %s", resp.StatusCode, snippet)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedTickets, err)
	}
	if len(envelope.Data) == 0 {
		return nil, errMalformedTickets
	}

	var tickets []GatewayTicket
	if err := json.Unmarshal(envelope.Data, &tickets); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedTickets, err)
	}
	return tickets, nil
}
