package provider

import (
	"testing"

	"github.com/annolab/margin/pkg/models"
	"github.com/annolab/margin/pkg/state"
	"github.com/stretchr/testify/assert"
)

func TestProviderDelegatesToState(t *testing.T) {
	st := state.New(models.SortLatest)
	p := New(st)

	ch := p.Subscribe()
	defer p.Unsubscribe(ch)

	st.Apply(state.Partial{
		Target: state.String("a.py"),
		Response: state.Threads([]models.Thread{
			{ID: "anno/0", Total: 1, Body: []models.Comment{{Value: "hi"}}},
		}),
	})

	assert.Len(t, ch, 1, "provider surfaces the state change signal")

	sess := p.Session()
	assert.Equal(t, "a.py", sess.Target)

	threads := p.Threads()
	assert.Len(t, threads, 1)
	assert.Equal(t, "anno/0", threads[0].ID)
}
