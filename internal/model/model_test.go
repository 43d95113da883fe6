package model

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupFallsBackToDefault(t *testing.T) {
	require.Equal(t, "ggml-base.en.bin", Lookup("no-such-model").Filename)
	require.Equal(t, "ggml-tiny.en.bin", Lookup("tiny.en").Filename)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	require.False(t, Exists(dir, "base.en"))

	require.NoError(t, os.WriteFile(Path(dir, "base.en"), []byte("x"), 0o644))
	require.True(t, Exists(dir, "base.en"))
}

func TestDownloadReportsProgressAndRenames(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 4096)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "models", "ggml-base.en.bin")

	var lastDownloaded, lastTotal int64
	err := DownloadFrom(context.Background(), srv.URL, dest, func(downloaded, total int64) {
		lastDownloaded = downloaded
		lastTotal = total
	})
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), lastDownloaded)
	require.Equal(t, int64(len(payload)), lastTotal)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, payload, data)

	_, err = os.Stat(dest + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "ggml-base.en.bin")
	err := DownloadFrom(context.Background(), srv.URL, dest, nil)
	require.ErrorContains(t, err, "HTTP 404")

	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr))
}

func TestValidateModelFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.bin")
	var header bytes.Buffer
	require.NoError(t, binary.Write(&header, binary.LittleEndian, ggmlMagic))
	require.NoError(t, os.WriteFile(good, header.Bytes(), 0o644))
	require.NoError(t, validateModelFile(good))

	bad := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(bad, []byte("not a model"), 0o644))
	require.ErrorContains(t, validateModelFile(bad), "not a ggml model")

	require.Error(t, validateModelFile(filepath.Join(dir, "absent.bin")))
}

func TestCleanTranscript(t *testing.T) {
	raw := "[00:00:00.000 --> 00:00:02.000]   fix the bug\n[00:00:02.000 --> 00:00:04.000] in the parser\n"
	require.Equal(t, "fix the bug in the parser", cleanTranscript(raw))

	require.Equal(t, "plain output", cleanTranscript("plain output\n"))
	require.Equal(t, "", cleanTranscript("\n\n"))
}

func TestWriteWAVHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 2.0, -2.0}
	var buf bytes.Buffer
	require.NoError(t, writeWAV(&buf, samples, TargetSampleRate))

	data := buf.Bytes()
	require.Equal(t, "RIFF", string(data[0:4]))
	require.Equal(t, "WAVE", string(data[8:12]))
	require.Equal(t, uint32(TargetSampleRate), binary.LittleEndian.Uint32(data[24:28]))
	require.Equal(t, uint32(len(samples)*2), binary.LittleEndian.Uint32(data[40:44]))

	// samples beyond full scale clamp instead of wrapping
	last := int16(binary.LittleEndian.Uint16(data[len(data)-2:]))
	require.Equal(t, int16(-32767), last)
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "512 B", FormatBytes(512))
	require.Equal(t, "1.5 KB", FormatBytes(1536))
	require.Equal(t, "142.0 MB", FormatBytes(142*1024*1024))
	gb29 := 2.9 * 1024 * 1024 * 1024
	require.Equal(t, "2.9 GB", FormatBytes(int64(gb29)))
}
