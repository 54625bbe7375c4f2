package middleware

import "context"

type contextKey uint8

const (
	ctxRequestID contextKey = iota + 1
	ctxClientIP
)

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRequestID)
}

// ClientIPFromContext returns the caller address resolved by Logging or
// RateLimit, whichever ran first.
func ClientIPFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxClientIP)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}
