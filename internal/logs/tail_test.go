package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundstage/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundstage.log")
	writeLog(t, path, "a\nb\nc\n")

	lines, offset, err := logs.Last(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, lines)
	assert.Equal(t, int64(6), offset)

	lines, _, err = logs.Last(path, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, lines)

	lines, offset, err = logs.Last(path, 0)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, int64(6), offset)
}

func TestLastLeavesPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundstage.log")
	writeLog(t, path, "done\nhalf")

	lines, offset, err := logs.Last(path, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"done"}, lines)
	assert.Equal(t, int64(5), offset)

	appendLog(t, path, " written\n")
	lines, _, err = logs.ReadFrom(path, offset)
	require.NoError(t, err)
	assert.Equal(t, []string{"half written"}, lines)
}

func TestMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.log")

	lines, offset, err := logs.Last(path, 3)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Zero(t, offset)
}

func TestReadFromRestartsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundstage.log")
	writeLog(t, path, "one\ntwo\nthree\n")
	_, offset, err := logs.Last(path, 1)
	require.NoError(t, err)

	writeLog(t, path, "fresh\n")
	lines, next, err := logs.ReadFrom(path, offset)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, lines)
	assert.Equal(t, int64(6), next)
}

func TestDirectoryIsRejected(t *testing.T) {
	_, _, err := logs.Last(t.TempDir(), 1)
	assert.Error(t, err)
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundstage.log")
	writeLog(t, path, "start\n")
	_, offset, err := logs.Last(path, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, func(line string) { got <- line })
	}()

	time.Sleep(100 * time.Millisecond)
	appendLog(t, path, "later\n")

	select {
	case line := <-got:
		assert.Equal(t, "later", line)
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not emit the appended line")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not stop")
	}
}
