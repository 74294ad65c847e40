// Package threadstore is the single source of truth for durable
// comment-thread and person data. All mutations go through it, and every
// mutation flushes the full document to the storage backend.
package threadstore

import (
	"bytes"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/annolab/margin/errors"
	"github.com/annolab/margin/logging"
	"github.com/annolab/margin/pkg/models"
	"github.com/annolab/margin/pkg/storage"
	"github.com/sirupsen/logrus"
)

type writeReq struct {
	data []byte
	ack  chan struct{}
}

// Store owns the in-memory document and serializes durable writes through a
// single goroutine so the backing medium always sees them in issue order.
// Write failures are logged, never rolled back: the in-memory document stays
// authoritative for the running session.
type Store struct {
	mu      sync.Mutex
	backend storage.Backend
	path    string
	doc     models.StoreDocument
	nextSeq int
	logger  *logrus.Entry

	writeCh   chan writeReq
	writeDone chan struct{}
	closeOnce sync.Once

	flushMu     sync.Mutex
	lastFlushed []byte
}

// Open loads the document stored under path, bootstrapping an empty one when
// the backend has none yet.
func Open(backend storage.Backend, path string) (*Store, error) {
	s := &Store{
		backend:   backend,
		path:      path,
		logger:    logging.NewLogger("threadstore"),
		writeCh:   make(chan writeReq, 64),
		writeDone: make(chan struct{}),
	}

	doc, maxSeq, err := s.load()
	if err != nil {
		if !storage.IsNotFound(err) {
			return nil, err
		}
		doc = models.NewStoreDocument()
		maxSeq = -1
	}
	s.doc = doc
	s.nextSeq = maxSeq + 1

	go s.writeLoop()

	if storage.IsNotFound(err) {
		// Create the empty document so later readers find a valid one.
		s.mu.Lock()
		s.persistLocked()
		s.mu.Unlock()
	}
	return s, nil
}

// load reads and repairs the backing document. The returned max sequence is
// computed before sanitation, so ids carried by dropped threads stay burned.
func (s *Store) load() (models.StoreDocument, int, error) {
	data, err := s.backend.Load(s.path)
	if err != nil {
		return models.StoreDocument{}, -1, err
	}

	var doc models.StoreDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.StoreDocument{}, -1, errors.PersistenceFailed(err, s.path)
	}
	if doc.Comments == nil {
		doc.Comments = make(map[string][]models.Thread)
	}
	if doc.Persons == nil {
		doc.Persons = make(map[string]models.Person)
	}
	maxSeq := doc.MaxThreadSeq()
	s.sanitize(&doc)
	return doc, maxSeq, nil
}

// sanitize repairs a loaded document so the in-process invariants hold even
// for foreign bytes: threads without a body are dropped, totals are forced
// back to the body length, and anchors are normalized to their compact form
// (the indented flush would otherwise keep reshaping them).
func (s *Store) sanitize(doc *models.StoreDocument) {
	for target, threads := range doc.Comments {
		kept := threads[:0]
		for i := range threads {
			if len(threads[i].Body) == 0 {
				s.logger.WithFields(logrus.Fields{
					"target": target,
					"thread": threads[i].ID,
				}).Warn("Dropping loaded thread with empty body")
				continue
			}
			threads[i].Total = len(threads[i].Body)
			threads[i].Indicator = compactAnchor(threads[i].Indicator)
			kept = append(kept, threads[i])
		}
		if len(kept) == 0 {
			delete(doc.Comments, target)
			continue
		}
		doc.Comments[target] = kept
	}
}

// compactAnchor normalizes an opaque anchor to its compact JSON encoding so
// the stored bytes are a fixed point under (re-)serialization. Anchors that
// are not valid JSON are copied through untouched.
func compactAnchor(anchor models.Anchor) models.Anchor {
	if len(anchor) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, anchor); err != nil {
		return append(models.Anchor(nil), anchor...)
	}
	return models.Anchor(buf.Bytes())
}

func (s *Store) writeLoop() {
	defer close(s.writeDone)
	for req := range s.writeCh {
		if req.data != nil {
			if err := s.backend.Save(s.path, req.data); err != nil {
				s.logger.WithError(err).Error("Failed to flush document")
			} else {
				s.flushMu.Lock()
				s.lastFlushed = req.data
				s.flushMu.Unlock()
			}
		}
		if req.ack != nil {
			close(req.ack)
		}
	}
}

// persistLocked snapshots the document and queues it for the writer.
// Callers hold s.mu.
func (s *Store) persistLocked() {
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode document")
		return
	}
	s.writeCh <- writeReq{data: data}
}

// FlushedMatches reports whether data is byte-identical to the last document
// this store successfully flushed. The store watcher uses it to tell the
// store's own saves apart from external writers. Callers should Sync first
// so queued flushes are accounted for.
func (s *Store) FlushedMatches(data []byte) bool {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	return s.lastFlushed != nil && bytes.Equal(s.lastFlushed, data)
}

// Sync blocks until every previously queued write has been handed to the
// backend. Mainly for tests and shutdown paths.
func (s *Store) Sync() {
	ack := make(chan struct{})
	s.writeCh <- writeReq{ack: ack}
	<-ack
}

// Close drains the write queue and stops the writer. The backend itself
// belongs to the caller and is not closed here.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.writeCh)
		<-s.writeDone
	})
}

// Reload replaces the in-memory document with the backend's current copy,
// picking up out-of-band writes. The id counter never moves backwards so
// thread ids stay unique across reloads.
func (s *Store) Reload() error {
	doc, maxSeq, err := s.load()
	if err != nil {
		if storage.IsNotFound(err) {
			doc = models.NewStoreDocument()
			maxSeq = -1
		} else {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	if seq := maxSeq + 1; seq > s.nextSeq {
		s.nextSeq = seq
	}
	return nil
}

// CreateThread allocates a fresh id and creates a single-comment thread
// under target, creating the target's sequence if absent.
func (s *Store) CreateThread(target, text string, creator models.Person) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := models.FormatThreadID(s.nextSeq)
	s.nextSeq++

	thread := models.Thread{
		ID:       id,
		Total:    1,
		Resolved: false,
		Body: []models.Comment{{
			Value:   text,
			Created: time.Now().UTC(),
			Creator: creator,
			Edited:  false,
		}},
	}
	s.doc.Comments[target] = append(s.doc.Comments[target], thread)

	s.persistLocked()
	return id, nil
}

// CreateComment appends a reply to an existing thread.
func (s *Store) CreateComment(target, threadID, text string, creator models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, err := s.findLocked(target, threadID)
	if err != nil {
		return err
	}

	thread.Body = append(thread.Body, models.Comment{
		Value:   text,
		Created: time.Now().UTC(),
		Creator: creator,
		Edited:  false,
	})
	thread.Total = len(thread.Body)

	s.persistLocked()
	return nil
}

// EditComment replaces the text of the comment at index. The comment's
// timestamp is refreshed to the edit time and its edited flag set; the
// original creation time is not retained.
func (s *Store) EditComment(target, threadID string, index int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, err := s.findLocked(target, threadID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(thread.Body) {
		return errors.CommentNotFound(target, threadID, index)
	}

	thread.Body[index].Value = text
	thread.Body[index].Edited = true
	thread.Body[index].Created = time.Now().UTC()

	s.persistLocked()
	return nil
}

// EditThread edits the thread-starting comment.
func (s *Store) EditThread(target, threadID, text string) error {
	return s.EditComment(target, threadID, 0, text)
}

// DeleteComment removes the reply at index. The thread-starting comment
// (index 0) is not deletable; threads always keep at least one comment.
func (s *Store) DeleteComment(target, threadID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, err := s.findLocked(target, threadID)
	if err != nil {
		return err
	}
	if index == 0 {
		return errors.RootCommentDelete(target, threadID)
	}
	if index < 0 || index >= len(thread.Body) {
		return errors.CommentNotFound(target, threadID, index)
	}

	thread.Body = append(thread.Body[:index], thread.Body[index+1:]...)
	thread.Total = len(thread.Body)

	s.persistLocked()
	return nil
}

// SetResolved sets a thread's resolved flag. Body and total are untouched.
func (s *Store) SetResolved(target, threadID string, resolved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, err := s.findLocked(target, threadID)
	if err != nil {
		return err
	}
	thread.Resolved = resolved

	s.persistLocked()
	return nil
}

// ThreadsByTarget returns deep copies of the target's threads in creation
// order, or nil when the target has none. An unknown target is a normal
// empty read, not an error.
func (s *Store) ThreadsByTarget(target string) []models.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	threads, ok := s.doc.Comments[target]
	if !ok {
		return nil
	}
	out := make([]models.Thread, len(threads))
	for i := range threads {
		out[i] = threads[i].Clone()
	}
	return out
}

// Targets returns all targets with at least one thread, sorted.
func (s *Store) Targets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.doc.Comments))
	for target, threads := range s.doc.Comments {
		if len(threads) > 0 {
			out = append(out, target)
		}
	}
	sort.Strings(out)
	return out
}

// Document returns a deep copy of the full document.
func (s *Store) Document() models.StoreDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

func (s *Store) findLocked(target, threadID string) (*models.Thread, error) {
	threads, ok := s.doc.Comments[target]
	if !ok {
		return nil, errors.TargetNotFound(target)
	}
	for i := range threads {
		if threads[i].ID == threadID {
			return &threads[i], nil
		}
	}
	return nil, errors.ThreadNotFound(target, threadID)
}
