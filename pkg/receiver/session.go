package receiver

import (
	"github.com/annolab/margin/pkg/models"
	"github.com/annolab/margin/pkg/state"
)

// Ephemeral session setters. These are pure state-store writes; none of
// them touch the thread store.

// SetExpandedCard marks the thread card that is expanded in the panel.
func (r *Receiver) SetExpandedCard(threadID string) {
	r.state.Apply(state.Partial{ExpandedCard: state.String(threadID)})
}

// SetReplyActiveCard marks the thread with an open reply box.
func (r *Receiver) SetReplyActiveCard(threadID string) {
	r.state.Apply(state.Partial{ReplyActiveCard: state.String(threadID)})
}

// SetEditingKey marks the comment currently being edited.
func (r *Receiver) SetEditingKey(key string) {
	r.state.Apply(state.Partial{EditingKey: state.String(key)})
}

// SetSortKey changes the thread ordering. Consumers re-run the refresh to
// see the new order applied.
func (r *Receiver) SetSortKey(key models.SortKey) {
	r.state.Apply(state.Partial{Sort: state.Sort(key)})
}

// SetShowResolved toggles resolved-thread visibility.
func (r *Receiver) SetShowResolved(show bool) {
	r.state.Apply(state.Partial{ShowResolved: state.Bool(show)})
}

// SetNewThreadActive opens or closes the new-thread composition box for
// the given file.
func (r *Receiver) SetNewThreadActive(active bool, file string) {
	r.state.Apply(state.Partial{
		NewThreadActive: state.Bool(active),
		NewThreadFile:   state.String(file),
	})
}

// SetPendingAnchor records the selection anchor the next created thread
// will be bound to.
func (r *Receiver) SetPendingAnchor(anchor models.Anchor) {
	r.state.Apply(state.Partial{PendingAnchor: state.Anchor(anchor)})
}
