// Package state holds the ephemeral per-session panel state and its change
// notification. It is the single source the presentation layer reads from;
// only the data receiver writes to it.
package state

import (
	"sync"

	"github.com/annolab/margin/pkg/models"
)

// NoCard is the expanded-card value meaning no thread card is expanded.
const NoCard = " "

// Session is the ephemeral UI state. It is never persisted.
type Session struct {
	// Target is the file path threads are currently shown for.
	Target string
	// Creator is the identity attributed to new comments, once resolved.
	Creator models.Person
	// UserSet reports whether Creator has been resolved.
	UserSet bool
	// ExpandedCard is the id of the expanded thread card, or NoCard.
	ExpandedCard string
	// ReplyActiveCard is the id of the thread with an open reply box.
	ReplyActiveCard string
	// EditingKey identifies the comment being edited, or "" when none.
	EditingKey string
	// ShowResolved toggles visibility of resolved threads.
	ShowResolved bool
	// Sort is the active thread sort key.
	Sort models.SortKey
	// NewThreadActive reports an in-progress new-thread composition.
	NewThreadActive bool
	// NewThreadFile is the target the pending new thread belongs to.
	NewThreadFile string
	// Response is the last refreshed, sorted thread list for Target.
	Response []models.Thread
	// CurTargetHasThreads reports whether Target has any threads.
	CurTargetHasThreads bool
	// PendingAnchor is the selection anchor captured before its thread
	// exists; consumed by the next thread creation.
	PendingAnchor models.Anchor
}

// OptionalAnchor distinguishes "leave unchanged" from "set to nil" for the
// pending anchor.
type OptionalAnchor struct {
	Set   bool
	Value models.Anchor
}

// Anchor wraps a value for a Partial.
func Anchor(a models.Anchor) OptionalAnchor {
	return OptionalAnchor{Set: true, Value: a}
}

// ClearAnchor produces the patch that clears the pending anchor.
func ClearAnchor() OptionalAnchor {
	return OptionalAnchor{Set: true}
}

// Partial is a batch patch over Session. Nil fields are left unchanged.
type Partial struct {
	Target              *string
	Creator             *models.Person
	UserSet             *bool
	ExpandedCard        *string
	ReplyActiveCard     *string
	EditingKey          *string
	ShowResolved        *bool
	Sort                *models.SortKey
	NewThreadActive     *bool
	NewThreadFile       *string
	Response            *[]models.Thread
	CurTargetHasThreads *bool
	PendingAnchor       OptionalAnchor
}

// Store holds the session and notifies subscribers of changes. One
// notification is emitted per Apply call, however many fields that call
// touched — and also when it touched none; consumers treat the signal as a
// coarse invalidation and re-read the snapshot.
type Store struct {
	mu          sync.RWMutex
	session     Session
	subscribers map[chan struct{}]struct{}
}

// New creates a Store with the given initial sort key.
func New(sort models.SortKey) *Store {
	return &Store{
		session: Session{
			ExpandedCard: NoCard,
			Sort:         sort,
		},
		subscribers: make(map[chan struct{}]struct{}),
	}
}

// Get returns a snapshot of the session. The thread slice is copied so
// callers cannot disturb later snapshots.
func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.session
	if s.session.Response != nil {
		snap.Response = make([]models.Thread, len(s.session.Response))
		copy(snap.Response, s.session.Response)
	}
	return snap
}

// Apply patches the session and emits a single change notification.
// Scalar fields short-circuit when the new value equals the old one; the
// thread response is replaced wholesale on every patch that carries it.
func (s *Store) Apply(p Partial) {
	s.mu.Lock()

	if p.Target != nil && *p.Target != s.session.Target {
		s.session.Target = *p.Target
	}
	if p.Creator != nil && *p.Creator != s.session.Creator {
		s.session.Creator = *p.Creator
	}
	if p.UserSet != nil && *p.UserSet != s.session.UserSet {
		s.session.UserSet = *p.UserSet
	}
	if p.ExpandedCard != nil && *p.ExpandedCard != s.session.ExpandedCard {
		s.session.ExpandedCard = *p.ExpandedCard
	}
	if p.ReplyActiveCard != nil && *p.ReplyActiveCard != s.session.ReplyActiveCard {
		s.session.ReplyActiveCard = *p.ReplyActiveCard
	}
	if p.EditingKey != nil && *p.EditingKey != s.session.EditingKey {
		s.session.EditingKey = *p.EditingKey
	}
	if p.ShowResolved != nil && *p.ShowResolved != s.session.ShowResolved {
		s.session.ShowResolved = *p.ShowResolved
	}
	if p.Sort != nil && *p.Sort != s.session.Sort {
		s.session.Sort = *p.Sort
	}
	if p.NewThreadActive != nil && *p.NewThreadActive != s.session.NewThreadActive {
		s.session.NewThreadActive = *p.NewThreadActive
	}
	if p.NewThreadFile != nil && *p.NewThreadFile != s.session.NewThreadFile {
		s.session.NewThreadFile = *p.NewThreadFile
	}
	if p.Response != nil {
		s.session.Response = *p.Response
	}
	if p.CurTargetHasThreads != nil && *p.CurTargetHasThreads != s.session.CurTargetHasThreads {
		s.session.CurTargetHasThreads = *p.CurTargetHasThreads
	}
	if p.PendingAnchor.Set {
		s.session.PendingAnchor = p.PendingAnchor.Value
	}

	s.mu.Unlock()
	s.notify()
}

// Subscribe creates a new subscription channel for change notifications.
func (s *Store) Subscribe() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 16)
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, ch)
	close(ch)
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
			// Non-blocking send so a stalled consumer cannot wedge writers;
			// a full buffer already guarantees a pending invalidation.
		}
	}
}

// Helper constructors for Partial fields.

// String returns a pointer to s for use in a Partial.
func String(s string) *string { return &s }

// Bool returns a pointer to b for use in a Partial.
func Bool(b bool) *bool { return &b }

// Sort returns a pointer to k for use in a Partial.
func Sort(k models.SortKey) *models.SortKey { return &k }

// Person returns a pointer to p for use in a Partial.
func Person(p models.Person) *models.Person { return &p }

// Threads returns a pointer to the given slice for use in a Partial.
func Threads(t []models.Thread) *[]models.Thread { return &t }
