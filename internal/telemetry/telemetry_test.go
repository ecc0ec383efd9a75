package telemetry

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	posthog.Client
	messages []posthog.Message
	closed   bool
	err      error
}

func (f *fakeClient) Enqueue(m posthog.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestNewWithoutKeyIsNoop(t *testing.T) {
	tr := New("", "https://example.invalid")
	assert.IsType(t, noopTracker{}, tr)

	tr.Track("plan_built", map[string]interface{}{"tiles": 5})
	assert.NoError(t, tr.Close())
}

func TestPostHogTrackerTrack(t *testing.T) {
	fc := &fakeClient{}
	tr := newPostHogTracker(fc)

	_, err := uuid.Parse(tr.DistinctID())
	require.NoError(t, err)

	tr.Track("download_complete", map[string]interface{}{"fetched": 3})
	require.Len(t, fc.messages, 1)

	capture, ok := fc.messages[0].(posthog.Capture)
	require.True(t, ok)
	assert.Equal(t, "download_complete", capture.Event)
	assert.Equal(t, tr.DistinctID(), capture.DistinctId)
	assert.Equal(t, 3, capture.Properties["fetched"])

	require.NoError(t, tr.Close())
	assert.True(t, fc.closed)
}

func TestPostHogTrackerEnqueueError(t *testing.T) {
	fc := &fakeClient{err: errors.New("queue full")}
	tr := newPostHogTracker(fc)

	assert.NotPanics(t, func() { tr.Track("rois_cropped", nil) })
	assert.Empty(t, fc.messages)
}
