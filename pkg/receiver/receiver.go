// Package receiver is the write path of the engine: the only component that
// mutates the thread store or the session state in response to intents. It
// fans durable writes out to the thread store, mirrors results into the
// state store, and emits domain events for cross-cutting listeners.
package receiver

import (
	"context"

	"github.com/annolab/margin/errors"
	"github.com/annolab/margin/logging"
	"github.com/annolab/margin/pkg/models"
	"github.com/annolab/margin/pkg/state"
	"github.com/annolab/margin/pkg/threadstore"
	"github.com/annolab/margin/pkg/users"
	"github.com/sirupsen/logrus"
)

// Receiver accepts user intents and applies them.
type Receiver struct {
	threads *threadstore.Store
	state   *state.Store
	lookup  users.Lookup
	logger  *logrus.Entry
	events  *hub
}

// New wires a Receiver over its collaborators.
func New(threads *threadstore.Store, st *state.Store, lookup users.Lookup) *Receiver {
	return &Receiver{
		threads: threads,
		state:   st,
		lookup:  lookup,
		logger:  logging.NewLogger("receiver"),
		events:  newHub(),
	}
}

// Subscribe registers a listener for receiver events.
func (r *Receiver) Subscribe() chan Event {
	return r.events.subscribe()
}

// Unsubscribe removes a listener and closes its channel.
func (r *Receiver) Unsubscribe(ch chan Event) {
	r.events.unsubscribe(ch)
}

// RefreshComments re-reads the active target's threads, sorts them per the
// session sort key, and publishes the result into the state store. This is
// the refresh primitive the polling loop drives.
func (r *Receiver) RefreshComments() {
	sess := r.state.Get()

	if sess.Target == "" {
		r.state.Apply(state.Partial{
			Response:            state.Threads(nil),
			CurTargetHasThreads: state.Bool(false),
		})
		return
	}

	threads := r.threads.ThreadsByTarget(sess.Target)
	models.SortThreads(threads, sess.Sort)

	r.state.Apply(state.Partial{
		Response:            state.Threads(threads),
		CurTargetHasThreads: state.Bool(len(threads) > 0),
	})
}

// PutThread creates a new thread on the composition target with the session
// creator, binding the pending selection anchor when one was captured.
// Returns the new thread id.
func (r *Receiver) PutThread(text string) (string, error) {
	sess := r.state.Get()
	if !sess.UserSet {
		return "", errors.New(errors.ErrCodeInvalidInput, "no user identity set")
	}

	target := sess.Target
	if sess.NewThreadFile != "" {
		target = sess.NewThreadFile
	}
	if target == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "no target set")
	}

	id, err := r.threads.CreateThread(target, text, sess.Creator)
	if err != nil {
		return "", err
	}

	if sess.PendingAnchor != nil {
		if err := r.threads.SetIndicator(target, id, sess.PendingAnchor); err != nil {
			r.logger.WithError(err).WithField("thread", id).Warn("Failed to bind pending anchor")
		}
	}

	r.state.Apply(state.Partial{
		NewThreadActive: state.Bool(false),
		NewThreadFile:   state.String(""),
		PendingAnchor:   state.ClearAnchor(),
	})

	r.events.emit(Event{Type: EventNewData, Target: target, ThreadID: id})
	r.RefreshComments()
	return id, nil
}

// PutComment appends a reply to a thread on the active target.
func (r *Receiver) PutComment(threadID, text string) error {
	sess := r.state.Get()
	if !sess.UserSet {
		return errors.New(errors.ErrCodeInvalidInput, "no user identity set")
	}

	if err := r.threads.CreateComment(sess.Target, threadID, text, sess.Creator); err != nil {
		return err
	}

	r.events.emit(Event{Type: EventNewData, Target: sess.Target, ThreadID: threadID})
	r.RefreshComments()
	return nil
}

// PutCommentEdit replaces a comment's text and clears the editing key.
func (r *Receiver) PutCommentEdit(threadID string, index int, text string) error {
	sess := r.state.Get()

	if err := r.threads.EditComment(sess.Target, threadID, index, text); err != nil {
		return err
	}

	r.state.Apply(state.Partial{EditingKey: state.String("")})
	r.events.emit(Event{Type: EventNewData, Target: sess.Target, ThreadID: threadID})
	r.RefreshComments()
	return nil
}

// PutThreadEdit edits a thread's starting comment.
func (r *Receiver) PutThreadEdit(threadID, text string) error {
	return r.PutCommentEdit(threadID, 0, text)
}

// DeleteComment removes a reply from a thread on the active target.
func (r *Receiver) DeleteComment(threadID string, index int) error {
	sess := r.state.Get()

	if err := r.threads.DeleteComment(sess.Target, threadID, index); err != nil {
		return err
	}

	r.events.emit(Event{Type: EventNewData, Target: sess.Target, ThreadID: threadID})
	r.RefreshComments()
	return nil
}

// SetResolved toggles a thread's resolved flag. The resolve event fires on
// every successful call, including calls that re-assert the current value:
// listeners track attempts, not transitions.
func (r *Receiver) SetResolved(threadID string, resolved bool) error {
	sess := r.state.Get()

	if err := r.threads.SetResolved(sess.Target, threadID, resolved); err != nil {
		return err
	}

	r.events.emit(Event{
		Type:     EventThreadResolved,
		Target:   sess.Target,
		ThreadID: threadID,
		Resolved: resolved,
	})
	r.events.emit(Event{Type: EventNewData, Target: sess.Target, ThreadID: threadID})
	r.RefreshComments()
	return nil
}

// SetTarget switches the active target. A no-op when unchanged; otherwise
// the composition flags reset and listeners are told so they can refresh
// immediately instead of waiting for the next poll tick.
func (r *Receiver) SetTarget(target string) {
	sess := r.state.Get()
	if sess.Target == target {
		return
	}

	r.state.Apply(state.Partial{
		Target:          state.String(target),
		NewThreadActive: state.Bool(false),
		ExpandedCard:    state.String(state.NoCard),
	})
	r.events.emit(Event{Type: EventTargetSet, Target: target})
}

// SetUserInfo resolves the session identity once. Calls while an identity
// is already set are ignored; lookup failures change nothing and surface to
// the caller.
func (r *Receiver) SetUserInfo(ctx context.Context, username string) error {
	sess := r.state.Get()
	if sess.UserSet {
		return nil
	}

	identity, err := r.lookup.Lookup(ctx, username)
	if err != nil {
		r.logger.WithError(err).WithField("username", username).Warn("User lookup failed")
		return err
	}

	person, err := r.threads.EnsurePerson(identity.Name, identity.AvatarURL)
	if err != nil {
		return err
	}

	r.state.Apply(state.Partial{
		Creator: state.Person(person),
		UserSet: state.Bool(true),
	})
	return nil
}

// ReconcileIndicators bulk-applies re-anchored indicator values for a
// target after host document edits, then refreshes.
func (r *Receiver) ReconcileIndicators(target string, anchors map[string]models.Anchor) error {
	if err := r.threads.SetAllIndicators(target, anchors); err != nil {
		return err
	}
	r.events.emit(Event{Type: EventNewData, Target: target})
	r.RefreshComments()
	return nil
}
