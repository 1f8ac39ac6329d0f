package domain

import (
	"context"
	"errors"
)

// ErrDraining is returned by Enqueue once shutdown has begun
var ErrDraining = errors.New("relay: queue is draining")

// NotificationChannel is the chat transport. threadID 0 posts to the main thread
type NotificationChannel interface {
	SendText(ctx context.Context, chatID int64, threadID int, text string) (Handle, error)
	EditText(ctx context.Context, h Handle, text string) error
	DeleteText(ctx context.Context, h Handle) error
	SendPhoto(ctx context.Context, chatID int64, threadID int, photoURL, caption string) (Handle, error)
	CreateSubthread(ctx context.Context, chatID int64, name string) (threadID int, err error)
	ResolveUserDisplay(ctx context.Context, chatID, userID int64) (User, error)
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// ChatCategoryStore maps chats to their category subthreads
type ChatCategoryStore interface {
	Get(ctx context.Context, chatID int64) (rec ChatRecord, ok bool, err error)
	Put(ctx context.Context, chatID int64, category string, threadID int) error
	// Register returns false when the chat already exists
	Register(ctx context.Context, chatID int64, name string) (bool, error)
	// Remove returns false when the chat was not registered
	Remove(ctx context.Context, chatID int64) (bool, error)
}

// QueuePort is the sequential task queue
type QueuePort interface {
	Enqueue(ctx context.Context, t *Task) (Ticket, error)
	AttachNotice(taskID string, h Handle) bool
	Status() QueueStatus
	Shutdown(ctx context.Context) error
}

// IngressPort consumes inbound chat messages
type IngressPort interface {
	HandleMessage(ctx context.Context, m Message)
}
