// Package notify queues one-shot notices for a session. A notice pushed
// before a redirect is drained by the page that follows it, so each one
// is shown exactly once.
package notify

import (
	"context"
	"sync"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func Success(msg string) Notice { return Notice{Kind: KindSuccess, Message: msg} }

func Error(msg string) Notice { return Notice{Kind: KindError, Message: msg} }

// maxPending bounds a session's queue when nothing drains it.
const maxPending = 16

// Queue holds notices between a redirect and the page that follows it.
// It must be shared by every console replica that shares sessions.
type Queue interface {
	Push(ctx context.Context, sessionID string, n Notice) error
	Drain(ctx context.Context, sessionID string) ([]Notice, error)
	Forget(ctx context.Context, sessionID string) error
}

// MemoryQueue serves a single console process.
type MemoryQueue struct {
	mu      sync.Mutex
	pending map[string][]Notice
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{pending: make(map[string][]Notice)}
}

func (q *MemoryQueue) Push(_ context.Context, sessionID string, n Notice) error {
	if sessionID == "" {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	list := append(q.pending[sessionID], n)
	if len(list) > maxPending {
		list = list[len(list)-maxPending:]
	}
	q.pending[sessionID] = list
	return nil
}

// Drain returns and forgets every pending notice for the session.
func (q *MemoryQueue) Drain(_ context.Context, sessionID string) ([]Notice, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	list := q.pending[sessionID]
	delete(q.pending, sessionID)
	return list, nil
}

// Forget drops a session's queue, e.g. on logout.
func (q *MemoryQueue) Forget(_ context.Context, sessionID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, sessionID)
	return nil
}

var _ Queue = (*MemoryQueue)(nil)
