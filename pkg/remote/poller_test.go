package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves scripted poll responses; every other method panics so a
// test exercising the pollers cannot silently drift into other calls.
type fakeAPI struct {
	counts []FileCounts
	phases []RunPhase
	err    error

	retrieveCalls int
	statusCalls   int
}

func (f *fakeAPI) RetrieveVectorStore(_ context.Context, id string) (VectorStoreInfo, error) {
	if f.err != nil {
		return VectorStoreInfo{}, f.err
	}
	i := f.retrieveCalls
	if i >= len(f.counts) {
		i = len(f.counts) - 1
	}
	f.retrieveCalls++
	return VectorStoreInfo{ID: id, Status: "in_progress", FileCounts: f.counts[i]}, nil
}

func (f *fakeAPI) RunStatus(_ context.Context, _, _ string) (RunPhase, error) {
	if f.err != nil {
		return "", f.err
	}
	i := f.statusCalls
	if i >= len(f.phases) {
		i = len(f.phases) - 1
	}
	f.statusCalls++
	return f.phases[i], nil
}

func (f *fakeAPI) UploadFile(context.Context, string, []byte) (string, error) {
	panic("unexpected UploadFile")
}
func (f *fakeAPI) DeleteFile(context.Context, string) error { panic("unexpected DeleteFile") }
func (f *fakeAPI) CreateVectorStore(context.Context, string, []string) (string, error) {
	panic("unexpected CreateVectorStore")
}
func (f *fakeAPI) AddVectorStoreFile(context.Context, string, string) error {
	panic("unexpected AddVectorStoreFile")
}
func (f *fakeAPI) RemoveVectorStoreFile(context.Context, string, string) error {
	panic("unexpected RemoveVectorStoreFile")
}
func (f *fakeAPI) DeleteVectorStore(context.Context, string) error {
	panic("unexpected DeleteVectorStore")
}
func (f *fakeAPI) CreateAssistant(context.Context, AssistantSpec) (string, error) {
	panic("unexpected CreateAssistant")
}
func (f *fakeAPI) DeleteAssistant(context.Context, string) error {
	panic("unexpected DeleteAssistant")
}
func (f *fakeAPI) StartThread(context.Context) (string, error) { panic("unexpected StartThread") }
func (f *fakeAPI) AddMessage(context.Context, string, string) error {
	panic("unexpected AddMessage")
}
func (f *fakeAPI) StartRun(context.Context, string, string) (string, error) {
	panic("unexpected StartRun")
}
func (f *fakeAPI) LatestAnswer(context.Context, string) (Answer, error) {
	panic("unexpected LatestAnswer")
}

var _ API = (*fakeAPI)(nil)

// testPollConfig records slept intervals instead of sleeping.
func testPollConfig(timeout time.Duration, slept *[]time.Duration) PollConfig {
	cfg := DefaultPollConfig(timeout)
	cfg.Sleep = func(d time.Duration) { *slept = append(*slept, d) }
	return cfg
}

func TestWaitForIndexing_CompletesWithoutSleeping(t *testing.T) {
	api := &fakeAPI{counts: []FileCounts{{Completed: 3, Total: 3}}}
	var slept []time.Duration

	counts, err := WaitForIndexing(context.Background(), api, "vs-1", testPollConfig(0, &slept), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Completed)
	assert.Empty(t, slept)
}

func TestWaitForIndexing_BackoffDoublesAndCaps(t *testing.T) {
	inProgress := FileCounts{InProgress: 2, Total: 2}
	api := &fakeAPI{counts: []FileCounts{
		inProgress, inProgress, inProgress, inProgress, inProgress, inProgress,
		{Completed: 2, Total: 2},
	}}
	var slept []time.Duration

	_, err := WaitForIndexing(context.Background(), api, "vs-1", testPollConfig(10*time.Minute, &slept), nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}, slept)
}

func TestWaitForIndexing_Timeout(t *testing.T) {
	api := &fakeAPI{counts: []FileCounts{{InProgress: 1, Total: 1}}}
	var slept []time.Duration

	counts, err := WaitForIndexing(context.Background(), api, "vs-1", testPollConfig(3*time.Second, &slept), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, 1, counts.InProgress)
}

func TestWaitForIndexing_FailedFilesDoNotError(t *testing.T) {
	api := &fakeAPI{counts: []FileCounts{{Completed: 1, Failed: 2, Total: 3}}}
	var slept []time.Duration

	counts, err := WaitForIndexing(context.Background(), api, "vs-1", testPollConfig(0, &slept), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Failed)
}

func TestWaitForIndexing_ReportsEveryRound(t *testing.T) {
	api := &fakeAPI{counts: []FileCounts{
		{InProgress: 2, Total: 2},
		{Completed: 2, Total: 2},
	}}
	var slept []time.Duration
	var reported []FileCounts

	_, err := WaitForIndexing(context.Background(), api, "vs-1", testPollConfig(0, &slept),
		func(c FileCounts) { reported = append(reported, c) })
	require.NoError(t, err)
	assert.Len(t, reported, 2)
	assert.Equal(t, 2, reported[0].InProgress)
	assert.Equal(t, 2, reported[1].Completed)
}

func TestWaitForIndexing_RetrieveError(t *testing.T) {
	api := &fakeAPI{err: errors.New("boom")}
	var slept []time.Duration

	_, err := WaitForIndexing(context.Background(), api, "vs-1", testPollConfig(0, &slept), nil)
	assert.ErrorContains(t, err, "boom")
}

func TestWaitForIndexing_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &fakeAPI{counts: []FileCounts{{InProgress: 1, Total: 1}}}
	var slept []time.Duration

	_, err := WaitForIndexing(ctx, api, "vs-1", testPollConfig(0, &slept), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitForRun_Completed(t *testing.T) {
	api := &fakeAPI{phases: []RunPhase{RunQueued, RunInProgress, RunCompleted}}
	var slept []time.Duration

	phase, err := WaitForRun(context.Background(), api, "th-1", "run-1", testPollConfig(0, &slept))
	require.NoError(t, err)
	assert.Equal(t, RunCompleted, phase)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, slept)
}

func TestWaitForRun_FailedPhaseIsError(t *testing.T) {
	api := &fakeAPI{phases: []RunPhase{RunFailed}}
	var slept []time.Duration

	phase, err := WaitForRun(context.Background(), api, "th-1", "run-1", testPollConfig(0, &slept))
	require.Error(t, err)
	assert.Equal(t, RunFailed, phase)
	assert.Contains(t, err.Error(), "failed")
}

func TestRunPhaseTerminal(t *testing.T) {
	for _, phase := range []RunPhase{RunQueued, RunInProgress, RunCancelling} {
		assert.False(t, phase.Terminal(), string(phase))
	}
	for _, phase := range []RunPhase{
		RunCompleted, RunFailed, RunCancelled, RunExpired, RunIncomplete, RunRequiresAction,
	} {
		assert.True(t, phase.Terminal(), string(phase))
	}
}
