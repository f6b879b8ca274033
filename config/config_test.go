package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hesusruiz/vcutils/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesusruiz/paperview/source"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "core.tex", c.Paper)
	assert.Equal(t, "refs.bib", c.Bibliography)
	assert.Equal(t, "auto", c.Renderer)
	assert.Equal(t, 30*time.Second, c.FetchTimeout)
	assert.Equal(t, ":4242", c.Addr)
	assert.Equal(t, SourceDir, c.SourceKind)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PAPERVIEW_PAPER", "main.tex")
	t.Setenv("PAPERVIEW_RENDERER", "latexjs")
	t.Setenv("PAPERVIEW_FETCH_TIMEOUT", "5s")
	t.Setenv("PAPERVIEW_S3_BUCKET", "papers")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "main.tex", c.Paper)
	assert.Equal(t, "latexjs", c.Renderer)
	assert.Equal(t, 5*time.Second, c.FetchTimeout)
	assert.Equal(t, "papers", c.S3Bucket)
}

func TestLoadBadEnvironment(t *testing.T) {
	t.Setenv("PAPERVIEW_FETCH_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	y, err := yaml.ParseYaml(`
paper: paper/main.tex
title: Deep Things
codeStyle: github
fetchTimeout: 1m
source:
  kind: http
  base: https://example.com/papers/
s3:
  region: eu-central-1
`)
	require.NoError(t, err)

	c := &Config{Paper: "core.tex", Bibliography: "refs.bib", FetchTimeout: time.Second}
	require.NoError(t, c.Apply(y))

	assert.Equal(t, "paper/main.tex", c.Paper)
	assert.Equal(t, "refs.bib", c.Bibliography, "keys not in the file are kept")
	assert.Equal(t, "Deep Things", c.Title)
	assert.Equal(t, "github", c.CodeStyle)
	assert.Equal(t, time.Minute, c.FetchTimeout)
	assert.Equal(t, SourceHTTP, c.SourceKind)
	assert.Equal(t, "https://example.com/papers/", c.SourceBase)
	assert.Equal(t, "eu-central-1", c.S3Region)
}

func TestApplyFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "paper.yaml")
	require.NoError(t, os.WriteFile(good, []byte("renderer: latex\n"), 0644))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fetchTimeout: later\n"), 0644))

	c := &Config{}
	require.NoError(t, c.ApplyFile(good))
	assert.Equal(t, "latex", c.Renderer)

	assert.Error(t, c.ApplyFile(bad))
	assert.Error(t, c.ApplyFile(filepath.Join(dir, "missing.yaml")))
}

func TestFetcher(t *testing.T) {
	ctx := context.Background()

	f, err := (&Config{SourceKind: "dir", SourceBase: "papers"}).Fetcher(ctx)
	require.NoError(t, err)
	assert.Equal(t, source.Dir{Root: "papers"}, f)

	f, err = (&Config{SourceKind: "HTTP", SourceBase: "https://example.com/"}).Fetcher(ctx)
	require.NoError(t, err)
	assert.IsType(t, source.HTTP{}, f)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"HTTP without base", Config{SourceKind: SourceHTTP}},
		{"S3 without bucket", Config{SourceKind: SourceS3}},
		{"Unknown kind", Config{SourceKind: "ftp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Fetcher(ctx)
			assert.Error(t, err)
		})
	}
}
