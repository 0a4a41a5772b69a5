package conversation

import "context"

// Store is the persistence contract for conversations and their transcript.
// MergeState performs a row-granularity read-modify-write: the partial map is
// shallow-merged over the stored workflow state under a row lock, so
// concurrent merges of disjoint keys both survive.
type Store interface {
	Create(ctx context.Context, title string) (*Conversation, error)
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	List(ctx context.Context, state string, limit, offset int) ([]*Conversation, error)
	Archive(ctx context.Context, publicID string) error

	AppendMessage(ctx context.Context, publicID string, msg NewMessage) (*Message, error)
	ListMessages(ctx context.Context, publicID string, limit int, beforeSequence int64) ([]*Message, error)

	ReadState(ctx context.Context, publicID string) (map[string]any, error)
	MergeState(ctx context.Context, publicID string, partial map[string]any) error

	ReadSummary(ctx context.Context, publicID string) (string, error)
	WriteSummary(ctx context.Context, publicID string, summary string) error
}
