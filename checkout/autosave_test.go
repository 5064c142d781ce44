package checkout

import (
	"sync"
	"testing"
	"time"

	"matjarna/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type draftRecorder struct {
	mu     sync.Mutex
	drafts []models.AbandonedCart
}

func (r *draftRecorder) record(d models.AbandonedCart) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts = append(r.drafts, d)
}

func (r *draftRecorder) saved() []models.AbandonedCart {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AbandonedCart, len(r.drafts))
	copy(out, r.drafts)
	return out
}

// Rapid successive edits collapse into a single save carrying the last values.
func TestSaverDebounce(t *testing.T) {
	rec := &draftRecorder{}
	s := NewSaver(50*time.Millisecond, rec.record)

	for _, phone := range []string{"05", "055", "0551", "0551234567"} {
		s.Schedule(models.AbandonedCart{SessionID: "sess-1", CustomerName: "Amine", CustomerPhone: phone})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	saved := rec.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "0551234567", saved[0].CustomerPhone)
}

func TestSaverPerSession(t *testing.T) {
	rec := &draftRecorder{}
	s := NewSaver(30*time.Millisecond, rec.record)

	s.Schedule(models.AbandonedCart{SessionID: "sess-a", CustomerName: "A"})
	s.Schedule(models.AbandonedCart{SessionID: "sess-b", CustomerName: "B"})

	time.Sleep(100 * time.Millisecond)

	saved := rec.saved()
	require.Len(t, saved, 2)
	names := map[string]bool{saved[0].CustomerName: true, saved[1].CustomerName: true}
	assert.True(t, names["A"] && names["B"])
}

func TestSaverCancel(t *testing.T) {
	rec := &draftRecorder{}
	s := NewSaver(30*time.Millisecond, rec.record)

	s.Schedule(models.AbandonedCart{SessionID: "sess-1", CustomerName: "Amine"})
	s.Cancel("sess-1")

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.saved())
}

func TestSaverCancelUnknownSession(t *testing.T) {
	s := NewSaver(time.Second, func(models.AbandonedCart) {})
	s.Cancel("never-scheduled")
}
