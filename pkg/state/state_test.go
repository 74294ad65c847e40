package state

import (
	"testing"
	"time"

	"github.com/annolab/margin/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPatchesFields(t *testing.T) {
	st := New(models.SortLatest)

	st.Apply(Partial{
		Target:       String("a.py"),
		ShowResolved: Bool(true),
		Sort:         Sort(models.SortDate),
	})

	snap := st.Get()
	assert.Equal(t, "a.py", snap.Target)
	assert.True(t, snap.ShowResolved)
	assert.Equal(t, models.SortDate, snap.Sort)

	// Untouched fields keep their initial values.
	assert.Equal(t, NoCard, snap.ExpandedCard)
	assert.False(t, snap.UserSet)
}

func TestApplyEmitsExactlyOneNotification(t *testing.T) {
	st := New(models.SortLatest)
	ch := st.Subscribe()
	defer st.Unsubscribe(ch)

	st.Apply(Partial{
		Target:          String("a.py"),
		ShowResolved:    Bool(true),
		ExpandedCard:    String("anno/3"),
		NewThreadActive: Bool(true),
	})

	assert.Len(t, ch, 1, "a multi-field batch must notify once")
	<-ch

	// An empty batch still notifies: the signal is a coarse invalidation,
	// not a diff.
	st.Apply(Partial{})
	assert.Len(t, ch, 1)
}

func TestNotificationPerApplyCall(t *testing.T) {
	st := New(models.SortLatest)
	ch := st.Subscribe()
	defer st.Unsubscribe(ch)

	st.Apply(Partial{Target: String("a.py")})
	st.Apply(Partial{Target: String("b.py")})
	st.Apply(Partial{Target: String("b.py")}) // no-op value, still a call

	assert.Len(t, ch, 3)
}

func TestSlowSubscriberDoesNotBlockWriters(t *testing.T) {
	st := New(models.SortLatest)
	ch := st.Subscribe()
	defer st.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			st.Apply(Partial{ShowResolved: Bool(i%2 == 0)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Apply blocked on a slow subscriber")
	}

	// The subscriber still holds at least one pending invalidation.
	assert.NotEmpty(t, ch)
}

func TestPendingAnchorSetAndClear(t *testing.T) {
	st := New(models.SortLatest)

	st.Apply(Partial{PendingAnchor: Anchor(models.Anchor(`{"start":1}`))})
	require.NotNil(t, st.Get().PendingAnchor)

	// A patch without the anchor leaves it alone.
	st.Apply(Partial{Target: String("a.py")})
	require.NotNil(t, st.Get().PendingAnchor)

	st.Apply(Partial{PendingAnchor: ClearAnchor()})
	assert.Nil(t, st.Get().PendingAnchor)
}

func TestGetReturnsSnapshotCopy(t *testing.T) {
	st := New(models.SortLatest)
	threads := []models.Thread{{
		ID:    "anno/0",
		Total: 1,
		Body:  []models.Comment{{Value: "hello", Created: time.Now()}},
	}}
	st.Apply(Partial{Response: Threads(threads)})

	snap := st.Get()
	snap.Response[0].ID = "mutated"

	assert.Equal(t, "anno/0", st.Get().Response[0].ID)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	st := New(models.SortLatest)
	ch := st.Subscribe()
	st.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	// Notifications after unsubscribe must not panic.
	st.Apply(Partial{Target: String("a.py")})
}
