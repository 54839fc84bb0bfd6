package campusgate

import "context"

type clientIPContextKey struct{}

// WithClientIP attaches the caller’s network address to ctx. The Engine uses
// it as the rate-limit key when the protected operation has no subject email,
// and records it on audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
