// Package prompt is the versioned system-prompt registry for generation
// stage roles.
package prompt

import (
	"context"
	"time"
)

// Prompt is one version of a role's system prompt. At most one version per
// role carries IsCurrent.
type Prompt struct {
	ID        uint      `json:"-"`
	AgentRole string    `json:"agent_role"`
	Version   string    `json:"version"`
	Text      string    `json:"text"`
	IsCurrent bool      `json:"is_current"`
	CreatedAt time.Time `json:"created_at"`
}

// Registry stores and resolves system prompts by role.
type Registry interface {
	// GetCurrent returns the current prompt for the role, or (nil, nil) when
	// no prompt is registered.
	GetCurrent(ctx context.Context, agentRole string) (*Prompt, error)

	// Set registers a prompt version. When promote is true it becomes the
	// current version and any previous current version is unmarked.
	Set(ctx context.Context, agentRole, version, text string, promote bool) (*Prompt, error)

	// ListVersions returns all versions for a role, newest first.
	ListVersions(ctx context.Context, agentRole string) ([]*Prompt, error)
}
