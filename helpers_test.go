package campusgate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testSchoolDirectory(t *testing.T) *SchoolDirectory {
	t.Helper()

	dir, err := NewSchoolDirectory(map[string]SchoolData{
		"sfu": {
			Name:          "Simon Fraser University",
			ShortenedName: "SFU",
			EmailDomains:  []string{"@sfu.ca"},
		},
		"ubc": {
			Name:          "University of British Columbia",
			ShortenedName: "UBC",
			EmailDomains:  []string{"@ubc.ca", "@student.ubc.ca"},
		},
	})
	if err != nil {
		t.Fatalf("NewSchoolDirectory failed: %v", err)
	}
	return dir
}

type mockIdentity struct {
	mu sync.Mutex

	existing  map[string]bool
	resolves  map[string]string
	passwords map[string]string

	createErr  error
	resetErr   error
	existsErr  error
	resolveErr error

	created []string
	resets  []string
}

func newMockIdentity() *mockIdentity {
	return &mockIdentity{
		existing:  map[string]bool{},
		resolves:  map[string]string{},
		passwords: map[string]string{},
	}
}

func (m *mockIdentity) UserExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existing[email], nil
}

func (m *mockIdentity) CreateUser(_ context.Context, email, password string) (AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return AuthResult{}, m.createErr
	}
	m.existing[email] = true
	m.passwords[email] = password
	m.created = append(m.created, email)
	return AuthResult{
		AccessToken:  "access-" + email,
		IDToken:      "id-" + email,
		RefreshToken: "refresh-" + email,
	}, nil
}

func (m *mockIdentity) ResetPassword(_ context.Context, email, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.passwords[email] = newPassword
	m.resets = append(m.resets, email)
	return nil
}

func (m *mockIdentity) ResolveIdentityToken(_ context.Context, identityToken string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resolveErr != nil {
		return "", m.resolveErr
	}
	username, ok := m.resolves[identityToken]
	if !ok {
		return "", errors.New("unknown identity token")
	}
	return username, nil
}

type mockEmailSender struct {
	mu sync.Mutex

	sendErr error

	// codes records the most recent code mailed per address.
	codes   map[string]string
	sent    int
	reports []ContentReport
}

func newMockEmailSender() *mockEmailSender {
	return &mockEmailSender{codes: map[string]string{}}
}

func (m *mockEmailSender) SendVerificationCode(_ context.Context, toEmail, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.codes[toEmail] = code
	m.sent++
	return nil
}

func (m *mockEmailSender) SendReport(_ context.Context, report ContentReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.reports = append(m.reports, report)
	return nil
}

func (m *mockEmailSender) lastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type gatewayCall struct {
	messages []GatewayMessage
}

// mockGateway scripts per-call outcomes: failOn marks call ordinals (1-based)
// that return an error, tickets overrides the default all-ok ticket array.
type mockGateway struct {
	mu sync.Mutex

	calls   []gatewayCall
	failOn  map[int]bool
	tickets func(call int, messages []GatewayMessage) []GatewayTicket
}

func (g *mockGateway) Send(_ context.Context, messages []GatewayMessage) ([]GatewayTicket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, gatewayCall{messages: messages})
	call := len(g.calls)

	if g.failOn[call] {
		return nil, errors.New("simulated gateway failure")
	}
	if g.tickets != nil {
		return g.tickets(call, messages), nil
	}

	tickets := make([]GatewayTicket, len(messages))
	for i := range messages {
		tickets[i] = GatewayTicket{Status: TicketStatusOK, ID: "ticket"}
	}
	return tickets, nil
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Push.PopTimeout = 100 * time.Millisecond
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client, opts ...func(*Builder)) (*Engine, *mockIdentity, *mockEmailSender) {
	t.Helper()

	identity := newMockIdentity()
	sender := newMockEmailSender()

	b := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithSchools(testSchoolDirectory(t)).
		WithIdentity(identity).
		WithEmailSender(sender).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, opt := range opts {
		opt(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, identity, sender
}
