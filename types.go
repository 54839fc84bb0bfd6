package campusgate

import "context"

// IdentityProvider is the primary interface that callers must implement to
// integrate campusgate with their account backend. It covers the terminal
// actions of both verification flows (create user, reset password), the
// existence checks guarding them, and identity-token resolution for the push
// pipeline.
//
// Every method may be called concurrently. Errors returned here are treated as
// upstream failures: the engine preserves the hand-off token so the caller can
// retry until it expires.
type IdentityProvider interface {
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, email, password string) (AuthResult, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
	ResolveIdentityToken(ctx context.Context, identityToken string) (string, error)
}

// AuthResult carries the credentials minted by the identity provider after a
// successful registration. The engine passes it through untouched.
type AuthResult struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
}

// EmailSender delivers transactional mail on behalf of the engine. The
// [github.com/campusgate/campusgate/email] package provides an SMTP
// implementation; tests substitute a recording fake.
type EmailSender interface {
	SendVerificationCode(ctx context.Context, toEmail, code string) error
	SendReport(ctx context.Context, report ContentReport) error
}

// ContentReport is a user-submitted content complaint relayed to the support
// inbox.
type ContentReport struct {
	ContentType   string
	ContentID     string
	ReportDetails string
	ReporterID    string
}

// Notification is the user-facing payload of a push message.
type Notification struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// EnqueueResult is returned by [Engine.EnqueueNotification].
type EnqueueResult struct {
	// MessageID identifies the queued message in dispatch logs and audit
	// events.
	MessageID string
	// QueuedCount is the number of push addresses included in the message.
	QueuedCount int
}

// DispatchReport summarizes one dispatcher poll cycle. When the queue was
// empty within the poll timeout, Processed is zero and the remaining counters
// are zero as well.
type DispatchReport struct {
	// MessageID is empty when no message was dequeued.
	MessageID string
	// Processed counts the push addresses carried by the dequeued message.
	Processed int
	// Succeeded counts addresses acknowledged with an "ok" ticket.
	Succeeded int
	// Failed counts addresses acknowledged with an "error" ticket.
	Failed int
	// Unknown counts addresses whose chunk failed to submit or returned a
	// malformed ticket array. They are not retried.
	Unknown int
}

// PushGateway submits one chunk of provider-shaped push messages and returns
// the provider's per-address tickets, positionally aligned with the request.
type PushGateway interface {
	Send(ctx context.Context, messages []GatewayMessage) ([]GatewayTicket, error)
}

// GatewayMessage is the provider wire shape for a single push address.
type GatewayMessage struct {
	To       string         `json:"to"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Data     map[string]any `json:"data"`
	Sound    string         `json:"sound"`
	Priority string         `json:"priority"`
}

// GatewayTicket is the provider's per-address outcome.
type GatewayTicket struct {
	Status  string         `json:"status"`
	ID      string         `json:"id,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

const (
	// TicketStatusOK is an exported constant or variable used by the push pipeline.
	TicketStatusOK = "ok"
	// TicketStatusError is an exported constant or variable used by the push pipeline.
	TicketStatusError = "error"
)

// SchoolData describes one institution in the domain allow-list directory.
type SchoolData struct {
	Name          string   `yaml:"name"`
	ShortenedName string   `yaml:"shortenedName"`
	EmailDomains  []string `yaml:"emailDomains"`
}

// SchoolInfo pairs a school with its directory key.
type SchoolInfo struct {
	Key  string
	Data SchoolData
}
