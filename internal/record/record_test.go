package record

import (
	"errors"
	"testing"
	"time"

	"github.com/specialistvlad/taskgrid/internal/node"
	"github.com/stretchr/testify/assert"
)

func TestRecord(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &Record{
		Start: start,
		End:   start.Add(3 * time.Second),
		Tasks: []TaskRecord{
			{Name: "a", Status: node.Success, Start: start, End: start.Add(time.Second)},
			{Name: "b", Status: node.Failure, Start: start, End: start.Add(2 * time.Second), Err: errors.New("boom")},
			{Name: "c", Status: node.BlockedFailed},
			{Name: "d", Status: node.Skipped, Start: start, End: start},
		},
	}

	assert.Equal(t, 3*time.Second, r.Duration())
	assert.False(t, r.Succeeded())
	assert.Equal(t, []string{"b"}, r.Failed())
	assert.Equal(t, []string{"c"}, r.Blocked())
	assert.Equal(t, 1, r.Count(node.Skipped))

	c, ok := r.Task("c")
	assert.True(t, ok)
	assert.Zero(t, c.Duration(), "blocked tasks never ran")

	a, _ := r.Task("a")
	assert.Equal(t, time.Second, a.Duration())

	_, ok = r.Task("missing")
	assert.False(t, ok)
}

func TestRecord_Succeeded(t *testing.T) {
	r := &Record{Tasks: []TaskRecord{
		{Name: "a", Status: node.Success},
		{Name: "b", Status: node.Skipped},
	}}
	assert.True(t, r.Succeeded())
	assert.Empty(t, r.Failed())

	assert.True(t, (&Record{}).Succeeded(), "an empty run succeeds")
}
