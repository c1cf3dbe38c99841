// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"
)

// LLMMode represents the operational mode of the LLM service
type LLMMode string

const (
	// LLMModeCloud indicates the service uses cloud-based LLM APIs
	LLMModeCloud LLMMode = "cloud"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for memo generation. Implementations wrap
// a cloud text-generation API; the service treats the model as an opaque
// collaborator whose output is parsed downstream.
type LLMService interface {
	// Chat generates a completion response based on the conversation history.
	// The messages slice should contain the full conversation context in
	// chronological order, including system prompts and user messages.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the LLM service is operational and can handle requests.
	HealthCheck(ctx context.Context) error

	// GetMode returns the current operational mode of the LLM service.
	GetMode() LLMMode

	// Close releases resources and performs cleanup operations.
	Close() error
}
