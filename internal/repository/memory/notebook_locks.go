package memory

import (
	"sync"

	"github.com/google/uuid"
)

// NotebookLocks serializes structural cell mutations (insert/move/delete) per
// notebook. Scoping the lock to the notebook id keeps unrelated notebooks
// fully independent; there is no global lock.
type NotebookLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewNotebookLocks() *NotebookLocks {
	return &NotebookLocks{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (l *NotebookLocks) lockFor(notebookId uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[notebookId]
	if !ok {
		m = &sync.Mutex{}
		l.locks[notebookId] = m
	}
	return m
}

func (l *NotebookLocks) Lock(notebookId uuid.UUID) {
	l.lockFor(notebookId).Lock()
}

func (l *NotebookLocks) Unlock(notebookId uuid.UUID) {
	l.lockFor(notebookId).Unlock()
}
