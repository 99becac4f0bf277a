package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session for downstream handlers. The session
// middleware is the only writer; everything after it in the chain reads.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the request's session, or nil outside the
// session middleware. Callers treat nil as an anonymous request.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
