package port

import "context"

const (
	NotifySuccess = "success"
	NotifyError   = "error"
)

type Notification struct {
	UserID       string
	JobID        string
	Status       string
	VideoURL     string
	ErrorMessage string
}

// Notifier reports job outcomes to an external listener. Delivery is
// best-effort: implementations retry internally and never disrupt the
// caller's control flow, which is why Notify returns nothing.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
