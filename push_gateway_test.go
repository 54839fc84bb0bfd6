package campusgate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPPushGatewaySend(t *testing.T) {
	var received []GatewayMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("request body is not a message array: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"status":"ok","id":"ticket-1"},{"status":"error","message":"DeviceNotRegistered"}]}`))
	}))
	defer server.Close()

	gateway := NewHTTPPushGateway(server.URL, server.Client())
	tickets, err := gateway.Send(context.Background(), []GatewayMessage{
		{To: "ExponentPushToken[a]", Title: "t", Body: "b", Sound: "default", Priority: "high"},
		{To: "ExponentPushToken[b]", Title: "t", Body: "b", Sound: "default", Priority: "high"},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(received) != 2 || received[0].To != "ExponentPushToken[a]" {
		t.Fatalf("unexpected request payload %+v", received)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}
	if tickets[0].Status != TicketStatusOK || tickets[0].ID != "ticket-1" {
		t.Fatalf("unexpected first ticket %+v", tickets[0])
	}
	if tickets[1].Status != TicketStatusError || tickets[1].Message != "DeviceNotRegistered" {
		t.Fatalf("unexpected second ticket %+v", tickets[1])
	}
}

func TestHTTPPushGatewayErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	gateway := NewHTTPPushGateway(server.URL, server.Client())
	if _, err := gateway.Send(context.Background(), []GatewayMessage{{To: "x"}}); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestHTTPPushGatewayMalformedResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "push accepted"},
		{"missing data", `{"errors":[]}`},
		{"data not an array", `{"data":{"status":"ok"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			gateway := NewHTTPPushGateway(server.URL, server.Client())
			_, err := gateway.Send(context.Background(), []GatewayMessage{{To: "x"}})
			if !errors.Is(err, errMalformedTickets) {
				t.Fatalf("expected errMalformedTickets, got %v", err)
			}
		})
	}
}

func TestNewHTTPPushGatewayDefaults(t *testing.T) {
	gateway := NewHTTPPushGateway("", nil)
	if gateway.url != DefaultPushGatewayURL {
		t.Fatalf("expected default endpoint, got %q", gateway.url)
	}
	if gateway.client == nil {
		t.Fatal("expected a default HTTP client")
	}
}
