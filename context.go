package goShield

import (
	"context"

	"github.com/MrEthical07/goShield/session"
)

type clientIPContextKey struct{}
type userAgentContextKey struct{}
type acceptLanguageContextKey struct{}

// WithClientIP attaches the caller's network address to ctx. The engine uses it for
// the block-list admission gate, failure counting, fingerprinting, and geolocation.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx. Used for device
// fingerprinting and derived device attributes.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithAcceptLanguage attaches the Accept-Language header to ctx. It participates in
// the device fingerprint.
func WithAcceptLanguage(ctx context.Context, acceptLanguage string) context.Context {
	return context.WithValue(ctx, acceptLanguageContextKey{}, acceptLanguage)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}

func acceptLanguageFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	lang, _ := ctx.Value(acceptLanguageContextKey{}).(string)
	return lang
}

func requestMetaFromContext(ctx context.Context) session.RequestMeta {
	return session.RequestMeta{
		Address:        clientIPFromContext(ctx),
		UserAgent:      userAgentFromContext(ctx),
		AcceptLanguage: acceptLanguageFromContext(ctx),
	}
}
