package main

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesusruiz/paperview/config"
	"github.com/hesusruiz/paperview/source"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"core.tex", "core.html"},
		{"paper", "paper.html"},
		{"v1.2.tex", "v1.2.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, outputName(tt.in))
	}
}

func TestModTime(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Paper: "core.tex", Bibliography: "refs.bib"}

	paper := filepath.Join(dir, "core.tex")
	require.NoError(t, os.WriteFile(paper, []byte("x"), 0644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(paper, old, old))

	d := source.Dir{Root: dir}
	assert.Equal(t, old.UnixNano(), modTime(d, cfg), "missing bibliography is ignored")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "refs.bib"), []byte("@misc{a,\n}"), 0644))
	assert.Greater(t, modTime(d, cfg), old.UnixNano())
}

func TestWatchSchedulerSkipsOverlappingRuns(t *testing.T) {
	scheduler := newWatchScheduler()

	var runs atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	_, err := scheduler.AddFunc("@every 1s", func() {
		if runs.Add(1) == 1 {
			close(started)
			<-release
		}
	})
	require.NoError(t, err)

	entries := scheduler.Entries()
	require.Len(t, entries, 1)
	job := entries[0].WrappedJob

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	// The first run is still blocked, so this one is skipped
	job.Run()
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	<-done

	job.Run()
	assert.Equal(t, int32(2), runs.Load())
}
