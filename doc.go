// Package campusgate provides the ephemeral-token verification engine and the
// push notification pipeline behind a campus account-creation and credential
// recovery workflow.
//
// All mutable state lives in Redis under per-key TTLs: verification codes,
// hand-off tokens, resend cooldown markers, rate-limit markers, push recipient
// bindings, and the push notification queue. Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build]; the
// process itself is stateless and many concurrent invocations may share the
// same Redis deployment.
//
// # Architecture boundaries
//
// campusgate is the public surface. It exposes [Engine], [Builder], [Config],
// [Dispatcher], and value types (Notification, DispatchReport, etc.). The
// identity provider, the outbound email sender, and the push gateway are
// collaborator interfaces supplied by the caller; this package never talks to
// them except through [IdentityProvider], [EmailSender], and [PushGateway].
//
// # Consistency contract
//
// Check-then-act sequences (code verify, token redeem) are read-before-delete
// with no cross-key transaction. Two concurrent callers racing the same key can
// both observe the record before either deletes it. That window is accepted:
// tokens are short-lived, single-subject, and the terminal actions downstream
// are idempotent enough in practice. Callers wanting stronger guarantees must
// layer a server-side script on top; the engine does not.
package campusgate
