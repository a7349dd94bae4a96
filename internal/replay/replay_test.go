package replay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dupfind/internal/scratch"
	"github.com/roach88/dupfind/internal/source"
	"github.com/roach88/dupfind/internal/testutil"
)

func newScope(t *testing.T) (*scratch.Scope, func() []string) {
	t.Helper()
	dir, list := testutil.ScratchDir(t)
	scope := scratch.NewScope(&scratch.Store{Dir: dir}, nil, nil)
	t.Cleanup(scope.Close)
	return scope, list
}

func replayAll[T any](t *testing.T, l *scratch.Log[T]) []T {
	t.Helper()
	sc := l.Scan()
	defer sc.Close()
	got, err := source.Collect[T](sc)
	require.NoError(t, err)
	return got
}

func TestBuffer_DrainsSourceOnceAndReplaysInOrder(t *testing.T) {
	scope, list := newScope(t)
	src := testutil.NewCountingSource("b", "a", "c", "c", "e")

	log, stats, err := Buffer(context.Background(), scope, scratch.StringCodec{}, source.Source[string](src))
	require.NoError(t, err)

	assert.True(t, src.Exhausted())
	assert.Equal(t, 5, src.Reads)
	assert.Equal(t, int64(5), stats.Records)
	assert.Len(t, list(), 1)

	first := replayAll(t, log)
	second := replayAll(t, log)
	assert.Equal(t, []string{"b", "a", "c", "c", "e"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 5, src.Reads, "replays never touch the source")
}

func TestBuffer_Empty(t *testing.T) {
	scope, _ := newScope(t)

	log, stats, err := Buffer(context.Background(), scope, scratch.Int64Codec{}, source.Slice[int64]())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Records)
	assert.Empty(t, replayAll(t, log))
}

func TestBuffer_SourceErrorLeavesFileForCleanup(t *testing.T) {
	scope, list := newScope(t)
	boom := errors.New("stdin closed")

	log, stats, err := Buffer(context.Background(), scope, scratch.StringCodec{},
		source.Source[string](testutil.NewFailingSource(boom, "a", "b")))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, log, "partial buffer is still reachable")
	assert.Equal(t, int64(2), stats.Records)
	assert.Equal(t, []string{log.File().Path()}, scope.Held())

	scope.Close()
	assert.Empty(t, list())
}

type badCodec struct{ scratch.StringCodec }

func (badCodec) Encode(v string) ([]byte, error) {
	if v == "bad" {
		return nil, errors.New("unencodable")
	}
	return []byte(v), nil
}

func TestBuffer_EncodeErrorReportsRecord(t *testing.T) {
	scope, _ := newScope(t)

	_, stats, err := Buffer[string](context.Background(), scope, badCodec{}, source.Slice("ok", "bad", "never"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
	assert.Equal(t, int64(1), stats.Records)
}

func TestBuffer_CreateFailure(t *testing.T) {
	scope := scratch.NewScope(&scratch.Store{Dir: "/nonexistent/scratch/dir"}, nil, nil)
	defer scope.Close()

	log, _, err := Buffer(context.Background(), scope, scratch.StringCodec{}, source.Slice("a"))
	require.Error(t, err)
	assert.Nil(t, log)
	assert.Empty(t, scope.Held())
}

func TestBuffer_Canceled(t *testing.T) {
	scope, _ := newScope(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Buffer(ctx, scope, scratch.StringCodec{}, source.Slice("a", "b"))
	assert.ErrorIs(t, err, context.Canceled)
}
