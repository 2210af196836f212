package storage

import (
	"context"
	"sync"
	"time"

	"eventdesk/internal/wizard"
	"eventdesk/pkg/types"
)

// MemoryDrafts keeps encoded wizard snapshots in process memory. It is used
// when no database is configured, so drafts do not survive a restart.
type MemoryDrafts struct {
	mu     sync.Mutex
	drafts map[int64]memoryDraft
	now    func() time.Time
}

type memoryDraft struct {
	data    []byte
	savedAt time.Time
}

func NewMemoryDrafts() *MemoryDrafts {
	return &MemoryDrafts{
		drafts: make(map[int64]memoryDraft),
		now:    time.Now,
	}
}

func (m *MemoryDrafts) SaveDraft(ctx context.Context, userID int64, snap *wizard.Snapshot) error {
	data, err := wizard.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = m.now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[userID] = memoryDraft{data: data, savedAt: savedAt}
	return nil
}

func (m *MemoryDrafts) LoadDraft(ctx context.Context, userID int64) (*wizard.Snapshot, error) {
	m.mu.Lock()
	d, ok := m.drafts[userID]
	m.mu.Unlock()
	if !ok {
		return nil, types.ErrDraftNotFound
	}
	return wizard.DecodeSnapshot(d.data)
}

func (m *MemoryDrafts) ClearDraft(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, userID)
	return nil
}

// PurgeBefore drops drafts saved before cutoff and returns how many went.
func (m *MemoryDrafts) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for userID, d := range m.drafts {
		if d.savedAt.Before(cutoff) {
			delete(m.drafts, userID)
			n++
		}
	}
	return n, nil
}
