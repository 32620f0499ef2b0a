package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_AppendAssignsIDAndTimestamp(t *testing.T) {
	tr := NewTracker()
	tr.now = func() time.Time { return testNow }

	ev := tr.Append(Event{Type: "checklist_created", UserID: "1"})
	assert.True(t, strings.HasPrefix(ev.ID, "evt_"))
	assert.Equal(t, testNow, ev.Timestamp)

	given := testNow.Add(-time.Hour)
	ev = tr.Append(Event{Type: "checklist_viewed", Timestamp: given})
	assert.Equal(t, given, ev.Timestamp)
}

func TestTracker_Filtering(t *testing.T) {
	tr := NewTracker()
	tr.now = func() time.Time { return testNow }

	tr.Track("checklist_created", "1", map[string]any{"checklistId": "cl_1"})
	tr.Track("checklist_created", "2", nil)
	tr.Append(Event{Type: "response_completed", UserID: "1", Timestamp: testNow.Add(-48 * time.Hour)})

	all := tr.Events(EventFilter{})
	require.Len(t, all, 3)

	byType := tr.Events(EventFilter{Type: "checklist_created"})
	assert.Len(t, byType, 2)

	byUser := tr.Events(EventFilter{UserID: "1"})
	assert.Len(t, byUser, 2)

	recent := tr.Events(EventFilter{Since: testNow.Add(-time.Hour)})
	assert.Len(t, recent, 2)

	old := tr.Events(EventFilter{Until: testNow.Add(-24 * time.Hour)})
	assert.Len(t, old, 1)
	assert.Equal(t, "response_completed", old[0].Type)
}
