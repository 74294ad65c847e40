package threadstore

import (
	"github.com/annolab/margin/pkg/models"
)

// SetIndicator sets one thread's indicator anchor. A nil anchor clears it.
func (s *Store) SetIndicator(target, threadID string, anchor models.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, err := s.findLocked(target, threadID)
	if err != nil {
		return err
	}
	thread.Indicator = compactAnchor(anchor)

	s.persistLocked()
	return nil
}

// SetAllIndicators bulk-updates indicator anchors across a target's threads.
// Threads whose id appears in anchors take the mapped value (nil clears);
// the rest are left untouched. Used to reconcile anchor drift after the
// host edits the target document.
func (s *Store) SetAllIndicators(target string, anchors map[string]models.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	threads, ok := s.doc.Comments[target]
	if !ok {
		return nil // no threads, nothing to reconcile
	}

	changed := false
	for i := range threads {
		if anchor, ok := anchors[threads[i].ID]; ok {
			threads[i].Indicator = compactAnchor(anchor)
			changed = true
		}
	}

	if changed {
		s.persistLocked()
	}
	return nil
}

// AllIndicators returns the indicator anchors for a target's threads,
// keyed by thread id. Threads without an anchor are omitted.
func (s *Store) AllIndicators(target string) map[string]models.Anchor {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.Anchor)
	for _, thread := range s.doc.Comments[target] {
		if thread.Indicator != nil {
			anchor := make(models.Anchor, len(thread.Indicator))
			copy(anchor, thread.Indicator)
			out[thread.ID] = anchor
		}
	}
	return out
}
