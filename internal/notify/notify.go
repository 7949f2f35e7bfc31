// Package notify delivers reminder pushes. The reminder scanner only
// decides when to send; everything about how lives here.
package notify

import "context"

// Notifier attempts one delivery and reports success or failure.
type Notifier interface {
	SendPush(ownerID int, title, message string) error
}

// TokenStore resolves a user's registered push device token.
type TokenStore interface {
	DeviceToken(ctx context.Context, userID int) (string, error)
}
