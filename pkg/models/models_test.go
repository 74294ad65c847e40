package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadIDRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		id    string
		seq   int
		valid bool
	}{
		{name: "first id", id: "anno/0", seq: 0, valid: true},
		{name: "large id", id: "anno/1042", seq: 1042, valid: true},
		{name: "missing prefix", id: "12", valid: false},
		{name: "wrong prefix", id: "note/12", valid: false},
		{name: "non-numeric suffix", id: "anno/abc", valid: false},
		{name: "negative suffix", id: "anno/-3", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seq, ok := ParseThreadSeq(tc.id)
			assert.Equal(t, tc.valid, ok)
			if tc.valid {
				assert.Equal(t, tc.seq, seq)
				assert.Equal(t, tc.id, FormatThreadID(seq))
			}
		})
	}
}

func TestStoreDocumentRoundTrip(t *testing.T) {
	p := NewPerson("Ada", "https://example.com/ada.png")
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	doc := NewStoreDocument()
	doc.Persons[p.ID] = p
	doc.Comments["a.py"] = []Thread{
		{
			ID:    "anno/0",
			Total: 2,
			Body: []Comment{
				{Value: "hello", Created: created, Creator: p},
				{Value: "reply", Created: created.Add(time.Minute), Creator: p},
			},
			Indicator: Anchor(`{"start":3,"end":9}`),
		},
		{
			ID:       "anno/1",
			Total:    1,
			Resolved: true,
			Body:     []Comment{{Value: "nit", Created: created, Creator: p, Edited: true}},
		},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var reloaded StoreDocument
	require.NoError(t, json.Unmarshal(data, &reloaded))

	assert.Equal(t, doc.Comments, reloaded.Comments)
	assert.Equal(t, doc.Persons, reloaded.Persons)

	// The opaque indicator must survive untouched.
	assert.JSONEq(t, `{"start":3,"end":9}`, string(reloaded.Comments["a.py"][0].Indicator))
}

func TestCloneIsDeep(t *testing.T) {
	p := NewPerson("Ada", "")
	doc := NewStoreDocument()
	doc.Comments["a.py"] = []Thread{{
		ID:    "anno/0",
		Total: 1,
		Body:  []Comment{{Value: "hello", Created: time.Now(), Creator: p}},
	}}

	cp := doc.Clone()
	cp.Comments["a.py"][0].Body[0].Value = "mutated"
	cp.Comments["a.py"][0].Resolved = true

	assert.Equal(t, "hello", doc.Comments["a.py"][0].Body[0].Value)
	assert.False(t, doc.Comments["a.py"][0].Resolved)
}

func TestMaxThreadSeq(t *testing.T) {
	doc := NewStoreDocument()
	assert.Equal(t, -1, doc.MaxThreadSeq())

	doc.Comments["a.py"] = []Thread{{ID: "anno/2"}, {ID: "anno/7"}}
	doc.Comments["b.ipynb"] = []Thread{{ID: "anno/4"}}
	assert.Equal(t, 7, doc.MaxThreadSeq())
}

func makeThread(id string, total int, rootCreated, lastReply time.Time) Thread {
	body := []Comment{{Value: "root", Created: rootCreated}}
	for i := 1; i < total; i++ {
		created := rootCreated
		if i == total-1 {
			created = lastReply
		}
		body = append(body, Comment{Value: "reply", Created: created})
	}
	return Thread{ID: id, Total: total, Body: body}
}

func TestSortThreads(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t1 := makeThread("anno/0", 3, base, base.Add(2*time.Hour))
	t2 := makeThread("anno/1", 1, base.Add(time.Hour), base.Add(time.Hour))
	t3 := makeThread("anno/2", 5, base.Add(-time.Hour), base.Add(30*time.Minute))

	t.Run("most replies descending", func(t *testing.T) {
		threads := []Thread{t1, t2, t3}
		SortThreads(threads, SortMostReplies)
		assert.Equal(t, []string{"anno/2", "anno/0", "anno/1"}, ids(threads))
	})

	t.Run("date newest first", func(t *testing.T) {
		threads := []Thread{t1, t2, t3}
		SortThreads(threads, SortDate)
		assert.Equal(t, []string{"anno/1", "anno/0", "anno/2"}, ids(threads))
	})

	t.Run("latest activity first", func(t *testing.T) {
		threads := []Thread{t1, t2, t3}
		SortThreads(threads, SortLatest)
		assert.Equal(t, []string{"anno/0", "anno/1", "anno/2"}, ids(threads))
	})

	t.Run("ties broken by id ascending", func(t *testing.T) {
		a := makeThread("anno/3", 2, base, base)
		b := makeThread("anno/1", 2, base, base)
		threads := []Thread{a, b}
		SortThreads(threads, SortMostReplies)
		assert.Equal(t, []string{"anno/1", "anno/3"}, ids(threads))
	})
}

func TestParseSortKey(t *testing.T) {
	for _, valid := range []string{"latest", "date", "mostReplies"} {
		key, ok := ParseSortKey(valid)
		assert.True(t, ok)
		assert.Equal(t, SortKey(valid), key)
	}

	_, ok := ParseSortKey("newest")
	assert.False(t, ok)
}

func ids(threads []Thread) []string {
	out := make([]string, len(threads))
	for i := range threads {
		out[i] = threads[i].ID
	}
	return out
}
