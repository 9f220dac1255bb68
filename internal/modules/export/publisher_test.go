package export

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitHub records contents-API calls and serves a configurable existing
// blob SHA.
type fakeGitHub struct {
	mu          sync.Mutex
	existingSHA string
	puts        []map[string]string
	putPaths    []string
}

func (f *fakeGitHub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			if f.existingSHA == "" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"sha": f.existingSHA})
		case http.MethodPut:
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.puts = append(f.puts, body)
			f.putPaths = append(f.putPaths, r.URL.Path)
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func newTestPublisher(t *testing.T, gh *fakeGitHub, minGap time.Duration) *Publisher {
	t.Helper()

	server := httptest.NewServer(gh.handler())
	t.Cleanup(server.Close)

	p := NewPublisher("guild/exports", "main", "test-token", minGap, zerolog.Nop())
	p.apiBase = server.URL
	return p
}

func writeTempExport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPublisherPushNewFile(t *testing.T) {
	gh := &fakeGitHub{}
	p := newTestPublisher(t, gh, 0)

	path := writeTempExport(t, "all_goods.json", `{"status":"success"}`)

	pushed, err := p.Push([]string{path}, false)
	require.NoError(t, err)
	assert.True(t, pushed)
	assert.False(t, p.LastPush().IsZero())

	require.Len(t, gh.puts, 1)
	put := gh.puts[0]
	assert.Equal(t, "main", put["branch"])
	assert.Empty(t, put["sha"], "new files carry no blob SHA")
	assert.Contains(t, put["message"], "Auto-update guild data")

	decoded, err := base64.StdEncoding.DecodeString(put["content"])
	require.NoError(t, err)
	assert.Equal(t, `{"status":"success"}`, string(decoded))

	assert.Equal(t, "/repos/guild/exports/contents/api_exports/all_goods.json", gh.putPaths[0])
}

func TestPublisherPushExistingFileCarriesSHA(t *testing.T) {
	gh := &fakeGitHub{existingSHA: "abc123"}
	p := newTestPublisher(t, gh, 0)

	path := writeTempExport(t, "all_companies.json", "{}")

	pushed, err := p.Push([]string{path}, false)
	require.NoError(t, err)
	assert.True(t, pushed)

	require.Len(t, gh.puts, 1)
	assert.Equal(t, "abc123", gh.puts[0]["sha"])
}

func TestPublisherIntervalGuard(t *testing.T) {
	gh := &fakeGitHub{}
	p := newTestPublisher(t, gh, time.Hour)

	path := writeTempExport(t, "all_goods.json", "{}")

	pushed, err := p.Push([]string{path}, false)
	require.NoError(t, err)
	assert.True(t, pushed)

	// Second push inside the interval is skipped.
	pushed, err = p.Push([]string{path}, false)
	require.NoError(t, err)
	assert.False(t, pushed)
	assert.Len(t, gh.puts, 1)

	// Force bypasses the guard.
	pushed, err = p.Push([]string{path}, true)
	require.NoError(t, err)
	assert.True(t, pushed)
	assert.Len(t, gh.puts, 2)
}

func TestPublisherDisabledWithoutToken(t *testing.T) {
	p := NewPublisher("guild/exports", "main", "", 0, zerolog.Nop())

	assert.False(t, p.Enabled())

	pushed, err := p.Push([]string{"/nonexistent"}, true)
	require.NoError(t, err)
	assert.False(t, pushed, "disabled publisher is a no-op, not an error")
}
