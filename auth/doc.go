// Package auth provides credential-attachment strategies for outbound
// calls. It supports static bearer tokens, API keys, and OAuth 2.0
// client-credentials tokens with cached, concurrency-safe refresh.
// Strategies never mutate the call they receive; Apply returns a new
// value with the credential material merged into the headers.
package auth
