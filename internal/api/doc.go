// Package api implements the low-level HTTP transport for the Agora API.
//
// It owns request construction (bearer auth, request IDs, JSON bodies),
// the retry and rate-limit policies, and the translation of non-2xx
// responses into the shared error taxonomy. The public package wraps it
// with typed resource services.
package api
