package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerbaras/mangapdf/pkg/config"
	"github.com/kerbaras/mangapdf/pkg/integrations"
	"github.com/kerbaras/mangapdf/pkg/services"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	var out syncBuffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseTitleID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"12345", 12345, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"12.5", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseTitleID(tt.arg)
			if tt.wantErr {
				assert.ErrorIs(t, err, services.ErrInvalidTitleID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoot_InvalidInputFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	t.Run("bad id", func(t *testing.T) {
		_, err := execute(t, "--api", server.URL, "not-a-number")
		assert.ErrorIs(t, err, services.ErrInvalidTitleID)
	})

	t.Run("bad jobs", func(t *testing.T) {
		_, err := execute(t, "--api", server.URL, "-j", "0", "12345")
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("bad backend", func(t *testing.T) {
		_, err := execute(t, "--api", server.URL, "--backend", "latex", "12345")
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := execute(t, "--api", server.URL)
		assert.Error(t, err)
	})

	assert.Equal(t, int32(0), hits.Load())
}

func TestRoot_TitleFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := execute(t, "--api", server.URL, "-r", "1", "--pause", "0s", "12345")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "12345")
}

func TestRoot_PDFCPUBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping end-to-end CLI test in short mode")
	}

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	writeJSON := func(w http.ResponseWriter, v any) {
		json.NewEncoder(w).Encode(map[string]any{"errno": 0, "data": v})
	}
	mux.HandleFunc("/comic/detail/42", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"id":      42,
			"title":   "CLI Manga",
			"authors": []map[string]any{{"tagId": 1, "tagName": "Someone"}},
			"chapters": []map[string]any{{
				"title": "serial",
				"data":  []map[string]any{{"chapterId": 2, "chapterTitle": "Two"}, {"chapterId": 1, "chapterTitle": "One"}},
			}},
		})
	})
	for _, id := range []int{1, 2} {
		mux.HandleFunc(fmt.Sprintf("/chapter/42/%d", id), func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{
				"chapterId": id,
				"pageUrlHD": []string{
					fmt.Sprintf("%s/img/%d-0.png", server.URL, id),
					fmt.Sprintf("%s/img/%d-1.png", server.URL, id),
				},
			})
		})
	}
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(testPNG())
	})

	output := filepath.Join(t.TempDir(), "out.pdf")
	stdout, err := execute(t, "--api", server.URL, "--backend", "pdfcpu", "--pause", "0s", "-o", output, "42")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved "+output)

	count, err := integrations.PDFPageCounter{}.PageCount(output)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "mangapdf dev\n", out)
}

func TestDevicesCommand(t *testing.T) {
	out, err := execute(t, "devices")

	require.NoError(t, err)
	assert.Contains(t, out, "kindle-paperwhite3: Kindle Paperwhite 3/4")
}

func TestRoot_UnknownDevice(t *testing.T) {
	_, err := execute(t, "--device", "etch-a-sketch", "12345")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
