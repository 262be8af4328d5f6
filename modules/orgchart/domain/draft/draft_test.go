package draft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	require.True(t, StatusDraft.IsValid())
	require.True(t, StatusPublished.IsValid())
	require.True(t, StatusArchived.IsValid())
	require.False(t, Status("pending").IsValid())

	require.False(t, StatusDraft.Terminal())
	require.True(t, StatusPublished.Terminal())
	require.True(t, StatusArchived.Terminal())
}

func TestDraftEditable(t *testing.T) {
	d := &Draft{Status: StatusDraft}
	require.True(t, d.Editable())

	d.Status = StatusPublished
	require.False(t, d.Editable())

	d.Status = StatusArchived
	require.False(t, d.Editable())
}

func TestDraftChangeSetLazyInit(t *testing.T) {
	d := &Draft{}
	cs := d.ChangeSet()
	require.NotNil(t, cs)
	require.Equal(t, 0, cs.Len())
	require.Same(t, cs, d.ChangeSet())
}
