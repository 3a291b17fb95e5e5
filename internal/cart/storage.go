package cart

import "context"

// Storage is the durable home of one session's cart snapshot.
// Consumers define this interface, not the Postgres implementation.
//
// Load returns (nil, nil) when no snapshot exists. Save overwrites the
// full snapshot. Erase removes the persisted key entirely rather than
// writing an empty value.
type Storage interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
	Erase(ctx context.Context) error
}
