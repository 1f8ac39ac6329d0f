// Package domain defines the relay task, chat and transport types and ports
package domain

import "time"

// TaskState is the lifecycle of a task
type TaskState int

const (
	// TaskQueued is waiting behind another task
	TaskQueued TaskState = iota
	// TaskInProgress is held by the worker
	TaskInProgress
	// TaskCompleted finished every identifier
	TaskCompleted
	// TaskAborted stopped early on a failed identifier or was dropped during drain
	TaskAborted
)

var stateNames = [...]string{"queued", "in_progress", "completed", "aborted"}

func (s TaskState) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Handle addresses a posted chat message
type Handle struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// IsZero reports whether h points at nothing
func (h Handle) IsZero() bool { return h.MessageID == 0 }

// User is a chat participant as far as captions need
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// Task is one submitted batch of identifiers. Only the worker mutates it once enqueued
type Task struct {
	ID          string
	Identifiers []string
	Submitter   User
	ChatID      int64
	ThreadID    int // subthread the request came from, 0 is the main thread
	Source      Handle
	Notices     []Handle
	Progress    Handle
	Completed   int
	State       TaskState
	SubmittedAt time.Time
}

// Ticket is returned by Enqueue. Position 0 means the task started immediately,
// n > 0 means n tasks are ahead of it, the running one included
type Ticket struct {
	TaskID   string `json:"task_id"`
	Position int    `json:"position"`
}

// QueueStatus is a snapshot of the queue for the ops surface
type QueueStatus struct {
	Busy      bool   `json:"busy"`
	Pending   int    `json:"pending"`
	Current   string `json:"current,omitempty"`
	Draining  bool   `json:"draining"`
	Processed int64  `json:"processed"`
}

// FailurePolicy decides what a failed identifier does to the rest of its task
type FailurePolicy string

const (
	// FailAbort stops the task at the first failed identifier
	FailAbort FailurePolicy = "abort"
	// FailContinue reports the failure and keeps going
	FailContinue FailurePolicy = "continue"
)

// ChatRecord is a registered chat and its category subthreads
type ChatRecord struct {
	ChatID  int64          `json:"chat_id"`
	Name    string         `json:"name"`
	Threads map[string]int `json:"threads_id"`
}

// ChatType mirrors the transport's chat kinds the relay cares about
type ChatType string

const (
	// ChatPrivate is a one-to-one chat with the bot
	ChatPrivate ChatType = "private"
	// ChatGroup is a basic group
	ChatGroup ChatType = "group"
	// ChatSupergroup is a supergroup, possibly with forum subthreads
	ChatSupergroup ChatType = "supergroup"
)

// Message is an inbound chat message reduced to what ingress reads
type Message struct {
	ChatID    int64
	ChatType  ChatType
	ChatTitle string
	MessageID int
	ThreadID  int
	From      User
	Text      string
}
