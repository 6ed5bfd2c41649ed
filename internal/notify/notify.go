package notify

import "context"

// Notifier delivers short push notifications to the persona's owner.
type Notifier interface {
	Push(ctx context.Context, message string) error
}
