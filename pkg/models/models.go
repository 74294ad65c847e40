// Package models defines the comment-thread data model shared across margin.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ThreadIDPrefix prefixes every thread id. Ids are assigned sequentially at
// creation and are never reused.
const ThreadIDPrefix = "anno/"

// Anchor is an opaque location reference binding a thread to a position in
// its target document. The engine round-trips it without interpretation.
type Anchor = json.RawMessage

// Person identifies a comment author. Immutable once created; embedded by
// value inside comments rather than referenced by id.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// NewPerson creates a Person with a fresh id.
func NewPerson(name, image string) Person {
	return Person{
		ID:    uuid.NewString(),
		Name:  name,
		Image: image,
	}
}

// Comment is one message within a thread body. Index 0 is the
// thread-starting comment; entries at index >= 1 are replies.
type Comment struct {
	Value   string    `json:"value"`
	Created time.Time `json:"created"`
	Creator Person    `json:"creator"`
	Edited  bool      `json:"edited"`
}

// Thread is a top-level comment and its replies. Total always equals
// len(Body), and Body[0] always exists.
type Thread struct {
	ID        string    `json:"id"`
	Total     int       `json:"total"`
	Resolved  bool      `json:"resolved"`
	Body      []Comment `json:"body"`
	Indicator Anchor    `json:"indicator,omitempty"`
}

// LastActivity returns the most recent Created timestamp across the body.
func (t *Thread) LastActivity() time.Time {
	var latest time.Time
	for _, c := range t.Body {
		if c.Created.After(latest) {
			latest = c.Created
		}
	}
	return latest
}

// Clone returns a deep copy of the thread.
func (t *Thread) Clone() Thread {
	cp := *t
	cp.Body = make([]Comment, len(t.Body))
	copy(cp.Body, t.Body)
	if t.Indicator != nil {
		cp.Indicator = make(Anchor, len(t.Indicator))
		copy(cp.Indicator, t.Indicator)
	}
	return cp
}

// FormatThreadID renders a sequence number as a thread id.
func FormatThreadID(seq int) string {
	return fmt.Sprintf("%s%d", ThreadIDPrefix, seq)
}

// ParseThreadSeq extracts the sequence number from a thread id.
func ParseThreadSeq(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, ThreadIDPrefix)
	if !ok {
		return 0, false
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// StoreDocument is the full durable state, serialized as one JSON document.
// Comments groups threads by target path in creation order.
type StoreDocument struct {
	Comments map[string][]Thread `json:"comments"`
	Persons  map[string]Person   `json:"persons"`
}

// NewStoreDocument returns an empty document with initialized maps.
func NewStoreDocument() StoreDocument {
	return StoreDocument{
		Comments: make(map[string][]Thread),
		Persons:  make(map[string]Person),
	}
}

// Clone returns a deep copy of the document.
func (d *StoreDocument) Clone() StoreDocument {
	cp := NewStoreDocument()
	for target, threads := range d.Comments {
		cloned := make([]Thread, len(threads))
		for i := range threads {
			cloned[i] = threads[i].Clone()
		}
		cp.Comments[target] = cloned
	}
	for id, p := range d.Persons {
		cp.Persons[id] = p
	}
	return cp
}

// MaxThreadSeq returns the highest thread sequence number in the document,
// or -1 when no thread carries a parseable id. Used to recover the id
// counter after a reload.
func (d *StoreDocument) MaxThreadSeq() int {
	max := -1
	for _, threads := range d.Comments {
		for i := range threads {
			if seq, ok := ParseThreadSeq(threads[i].ID); ok && seq > max {
				max = seq
			}
		}
	}
	return max
}
