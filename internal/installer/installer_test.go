package installer

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jandubois/droidlaunch/internal/runner"
)

func TestPlanFor(t *testing.T) {
	tests := []struct {
		goos    string
		method  Method
		wantErr error
		contain string
	}{
		{"windows", MethodDownload, nil, ""},
		{"linux", MethodDelegate, nil, "sudo apt install scrcpy"},
		{"darwin", MethodDelegate, nil, "brew install scrcpy"},
		{"plan9", "", ErrUnsupportedPlatform, ""},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			plan, err := PlanFor(tt.goos)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.method, plan.Method)
			assert.Contains(t, plan.Instructions, tt.contain)
		})
	}

	plan, _ := PlanFor("windows")
	assert.Equal(t, DownloadURL, plan.URL)
	assert.Equal(t, "scrcpy-win64.zip", plan.Filename)
}

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestEnsureOnPath(t *testing.T) {
	m := &runner.Mock{Paths: map[string]string{"scrcpy": "/usr/bin/scrcpy"}}
	inst := New(Options{GOOS: "windows", Runner: m, Dir: t.TempDir(), URL: "http://invalid.invalid/"})

	res, err := inst.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, res.Outcome)
	assert.Equal(t, "/usr/bin/scrcpy", res.Path)
}

func TestEnsureDownloadsOnce(t *testing.T) {
	archive := zipArchive(t, map[string]string{
		"scrcpy-win64-v3.1/scrcpy.exe": "MZ",
		"scrcpy-win64-v3.1/adb.exe":    "MZ",
	})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(archive)
	}))
	defer srv.Close()

	dir := t.TempDir()
	var lastDone int64
	inst := New(Options{
		GOOS:     "windows",
		Runner:   &runner.Mock{},
		Dir:      dir,
		URL:      srv.URL,
		Progress: func(done, total int64) { lastDone = done },
	})

	res, err := inst.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Installed, res.Outcome)
	assert.Equal(t, filepath.Join(dir, "scrcpy-win64-v3.1", "scrcpy.exe"), res.Path)
	assert.Equal(t, filepath.Join(dir, "scrcpy-win64-v3.1"), res.Dir)
	assert.Equal(t, int64(len(archive)), res.Bytes)
	assert.Equal(t, int64(len(archive)), lastDone)

	_, err = os.Stat(filepath.Join(dir, "scrcpy-win64.zip"))
	assert.True(t, os.IsNotExist(err), "archive should be removed after extraction")

	res, err = inst.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, res.Outcome)
	assert.Equal(t, int32(1), hits.Load())
}

func TestEnsureDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	inst := New(Options{GOOS: "windows", Runner: &runner.Mock{}, Dir: dir, URL: srv.URL})
	_, err := inst.Ensure(context.Background())
	assert.ErrorContains(t, err, "status 404")

	_, err = os.Stat(filepath.Join(dir, "scrcpy-win64.zip"))
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureDelegates(t *testing.T) {
	for _, goos := range []string{"linux", "darwin"} {
		t.Run(goos, func(t *testing.T) {
			inst := New(Options{GOOS: goos, Runner: &runner.Mock{}, Dir: t.TempDir()})
			_, err := inst.Ensure(context.Background())
			assert.ErrorIs(t, err, ErrManualInstall)
			assert.ErrorContains(t, err, "scrcpy")
		})
	}
}

func TestEnsureUnsupported(t *testing.T) {
	inst := New(Options{GOOS: "plan9", Runner: &runner.Mock{}, Dir: t.TempDir()})
	_, err := inst.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	require.NoError(t, os.WriteFile(archive, zipArchive(t, map[string]string{"../escape.txt": "x"}), 0644))

	dest := filepath.Join(dir, "out")
	err := Extract(archive, dest)
	assert.ErrorIs(t, err, ErrUnsafePath)
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractTarGz(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	content := []byte("#!/bin/sh\n")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "scrcpy-linux/", Typeflag: tar.TypeDir, Mode: 0755}))
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "scrcpy-linux/scrcpy", Typeflag: tar.TypeReg, Mode: 0755, Size: int64(len(content))}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	dir := t.TempDir()
	archive := filepath.Join(dir, "scrcpy.tar.gz")
	require.NoError(t, os.WriteFile(archive, buf.Bytes(), 0644))

	dest := filepath.Join(dir, "out")
	require.NoError(t, Extract(archive, dest))
	got, err := os.ReadFile(filepath.Join(dest, "scrcpy-linux", "scrcpy"))
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestExtractUnknownFormat(t *testing.T) {
	assert.ErrorContains(t, Extract("scrcpy.rar", t.TempDir()), "unknown archive format")
}
