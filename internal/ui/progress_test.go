package ui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sift/internal/driver"
)

func TestProgressModelTracksEvents(t *testing.T) {
	m, ok := NewProgressModel("checking", []string{"a.c", "b.c"}, nil).(*progressModel)
	require.True(t, ok)

	m.applyEvent(driver.Event{Kind: driver.EventChecking, File: "a.c"})
	assert.Equal(t, "checking", m.items[0].status)
	assert.Equal(t, 0, m.checked)

	m.applyEvent(driver.Event{Kind: driver.EventDone, File: "a.c"})
	m.applyEvent(driver.Event{Kind: driver.EventCached, File: "b.c"})
	m.applyEvent(driver.Event{Kind: driver.EventDone, File: "unknown.c"})
	assert.Equal(t, 2, m.checked)
	assert.Equal(t, 1, m.cached)
	assert.Equal(t, []int{0, 1}, m.recent)

	view := m.View()
	assert.Contains(t, view, "checking (2/2 files, 1 cached)")
	assert.Contains(t, view, "a.c")
}

func TestProgressModelListsRecentFiles(t *testing.T) {
	var files []string
	for i := range 20 {
		files = append(files, fmt.Sprintf("f%02d.c", i))
	}
	m, ok := NewProgressModel("checking", files, nil).(*progressModel)
	require.True(t, ok)
	assert.Len(t, m.visible(), maxRows)

	for _, f := range files {
		m.applyEvent(driver.Event{Kind: driver.EventDone, File: f})
	}
	m.applyEvent(driver.Event{Kind: driver.EventChecking, File: "f00.c"})
	vis := m.visible()
	require.Len(t, vis, maxRows)
	assert.Equal(t, 0, vis[len(vis)-1])
	assert.NotContains(t, m.View(), "f01.c")
}

func TestDoneMsgQuits(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("checking", []string{"a.c"}, events)
	msg := m.(*progressModel).listenForEvent()()
	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "done: checking")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "a...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
