package checkout

import (
	"context"
	"log"
	"sync"
	"time"

	"matjarna/db"
	"matjarna/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Saver debounces abandoned-cart snapshots per session. Each new draft
// cancels any pending timer for that session and starts a fresh one, so only
// the latest field values are persisted (last edit wins, no stale backlog).
// Saving is best-effort; failures are logged and never surfaced.
type Saver struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	delay  time.Duration
	save   func(models.AbandonedCart)
}

// NewSaver builds a Saver with the given idle delay. A nil save func gets
// the Mongo upsert.
func NewSaver(delay time.Duration, save func(models.AbandonedCart)) *Saver {
	if save == nil {
		save = persistDraft
	}
	return &Saver{
		timers: make(map[string]*time.Timer),
		delay:  delay,
		save:   save,
	}
}

// Schedule queues draft for saving after the idle delay, superseding any
// pending save for the same session.
func (s *Saver) Schedule(draft models.AbandonedCart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[draft.SessionID]; ok {
		t.Stop()
	}
	sessionID := draft.SessionID
	s.timers[sessionID] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.timers, sessionID)
		s.mu.Unlock()
		s.save(draft)
	})
}

// Cancel drops any pending save for the session, used when checkout succeeds
// before the timer fires.
func (s *Saver) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

// persistDraft upserts the snapshot keyed by session id.
func persistDraft(draft models.AbandonedCart) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"customer_name":  draft.CustomerName,
			"customer_phone": draft.CustomerPhone,
			"wilaya_code":    draft.WilayaCode,
			"address":        draft.Address,
			"items":          draft.Items,
			"subtotal":       draft.Subtotal,
			"updated_at":     now,
		},
		"$setOnInsert": bson.M{"sessionid": draft.SessionID, "created_at": now},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := db.AbandonedCartsCollection.UpdateOne(ctx, bson.M{"sessionid": draft.SessionID}, update, opts); err != nil {
		log.Println("abandoned cart save error:", err)
	}
}

// DeleteDraft removes the abandoned-cart snapshot once checkout succeeds.
func DeleteDraft(ctx context.Context, sessionID string) error {
	_, err := db.AbandonedCartsCollection.DeleteOne(ctx, bson.M{"sessionid": sessionID})
	return err
}
