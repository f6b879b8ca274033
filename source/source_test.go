package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"Plain UTF-8", []byte("héllo"), "héllo"},
		{"UTF-8 BOM", append([]byte{0xEF, 0xBB, 0xBF}, "tex"...), "tex"},
		{"UTF-16LE BOM", []byte{0xFF, 0xFE, 'o', 0, 'k', 0}, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "core.tex"), []byte("\xEF\xBB\xBF\\section{A}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "refs.bib"), []byte("@misc{a,\n}"), 0644))

	d := Dir{Root: root}
	ctx := context.Background()

	got, err := d.Fetch(ctx, "core.tex")
	require.NoError(t, err)
	assert.Equal(t, `\section{A}`, got)

	got, err = d.Fetch(ctx, "sub/../sub/refs.bib")
	require.NoError(t, err)
	assert.Equal(t, "@misc{a,\n}", got)

	_, err = d.Fetch(ctx, "missing.tex")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, name := range []string{"../etc/passwd", "sub/../../x", "/etc/passwd", ""} {
		_, err = d.Fetch(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidPath, name)
	}

	mt, err := d.ModTime("core.tex")
	require.NoError(t, err)
	assert.NotZero(t, mt)
}

func TestHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/papers/core.tex":
			w.Write([]byte("\\begin{document}x\\end{document}"))
		case "/papers/broken.tex":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	h := HTTP{Base: srv.URL + "/papers/", Client: srv.Client()}
	ctx := context.Background()

	got, err := h.Fetch(ctx, "core.tex")
	require.NoError(t, err)
	assert.Equal(t, "\\begin{document}x\\end{document}", got)

	_, err = h.Fetch(ctx, "refs.bib")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 404, se.Code)
	assert.EqualError(t, err, "request failed with status 404")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.Fetch(ctx, "broken.tex")
	assert.EqualError(t, err, "request failed with status 500")
	assert.False(t, errors.Is(err, ErrNotFound))
}

type fakeS3 struct {
	objects map[string]string
	lastKey string
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastKey = aws.ToString(params.Key)
	body, ok := f.objects[f.lastKey]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func TestS3(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"papers/core.tex": "body"}}
	b := S3{Client: fake, Bucket: "bucket", Prefix: "papers"}
	ctx := context.Background()

	got, err := b.Fetch(ctx, "core.tex")
	require.NoError(t, err)
	assert.Equal(t, "body", got)
	assert.Equal(t, "papers/core.tex", fake.lastKey)

	_, err = b.Fetch(ctx, "refs.bib")
	assert.ErrorIs(t, err, ErrNotFound)
}
