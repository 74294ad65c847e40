// Package provider is the read-only facade presentation code consumes.
// It delegates to the state store so panel components never touch the
// state or thread stores directly.
package provider

import (
	"github.com/annolab/margin/pkg/models"
	"github.com/annolab/margin/pkg/state"
)

// Provider exposes session reads and the change notification.
type Provider struct {
	state *state.Store
}

// New creates a Provider over the given state store.
func New(st *state.Store) *Provider {
	return &Provider{state: st}
}

// Session returns a snapshot of the current session state.
func (p *Provider) Session() state.Session {
	return p.state.Get()
}

// Threads returns the last refreshed thread list for the active target.
func (p *Provider) Threads() []models.Thread {
	return p.state.Get().Response
}

// Subscribe registers for change notifications; consumers re-read via
// Session on every signal.
func (p *Provider) Subscribe() chan struct{} {
	return p.state.Subscribe()
}

// Unsubscribe removes a change subscription.
func (p *Provider) Unsubscribe(ch chan struct{}) {
	p.state.Unsubscribe(ch)
}
