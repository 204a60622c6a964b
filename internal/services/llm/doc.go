// Package llm is a small client for OpenAI-compatible chat completion
// endpoints (OpenRouter by default) used to translate subtitle text.
//
// Requests always ask for a JSON object response. Translate wraps the
// prompt and decoding for a single cue; CompleteJSON is the lower level
// entry point; HealthCheck verifies credentials and model availability.
//
// HTTP 408/429/5xx responses, empty completions and network timeouts are
// retried with exponential backoff (base 1s, max 10s, 5 attempts by
// default), honouring Retry-After. Context cancellation stops retries.
package llm
