package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	httpadapter "github.com/bnema/revisionai/internal/adapters/http"
	"github.com/bnema/revisionai/internal/adapters/openai"
	envstore "github.com/bnema/revisionai/internal/adapters/secrets/env"
	"github.com/bnema/revisionai/internal/observability"
	"github.com/bnema/revisionai/internal/relay"
	"github.com/bnema/revisionai/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestSessionNewThenList(t *testing.T) {
	home := t.TempDir()

	id := newSession(t, home)

	stdout, _, err := executeCLI(t, home, "session", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sessions: 1")
	assert.Contains(t, stdout, "Fresh session")
	assert.Contains(t, stdout, "("+id+")")

	_, err = os.Stat(filepath.Join(home, ".revisionai", "sessions.toml"))
	require.NoError(t, err)
}

func TestSessionListJSONOutput(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "session", "new", "--title", "Cell Biology")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "session", "list", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"Title\": \"Cell Biology\"")
	assert.Contains(t, stdout, "\"MessageCount\": 1")
}

func TestSessionShowUnknownSession(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "session", "show", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestSessionRenameClearDelete(t *testing.T) {
	home := t.TempDir()
	id := newSession(t, home)

	stdout, _, err := executeCLI(t, home, "session", "rename", id, "Organic", "Chemistry")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\"Organic Chemistry\"")

	stdout, _, err = executeCLI(t, home, "session", "show", id, "--json")
	require.NoError(t, err)
	assert.Equal(t, "Organic Chemistry", gjson.Get(stdout, "title").String())

	_, _, err = executeCLI(t, home, "session", "clear", id)
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "session", "show", id, "--json")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.Get(stdout, "messages.#").Int())

	stdout, _, err = executeCLI(t, home, "session", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "deleted "+id)

	_, _, err = executeCLI(t, home, "session", "show", id)
	require.Error(t, err)
}

func TestSessionRenameRejectsBlankTitle(t *testing.T) {
	home := t.TempDir()
	id := newSession(t, home)

	_, _, err := executeCLI(t, home, "session", "rename", id, "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session title is empty")
}

func TestSessionExportWritesFile(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "session", "new", "--title", "Cell Biology")
	require.NoError(t, err)
	id := firstSessionID(t, home)

	output := filepath.Join(home, "cell.yaml")
	stdout, _, err := executeCLI(t, home, "session", "export", id, "--format", "yaml", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "exported "+id)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Cell Biology")
	assert.Contains(t, string(data), "role: assistant")
}

func TestSessionExportToStdout(t *testing.T) {
	home := t.TempDir()
	id := newSession(t, home)

	stdout, _, err := executeCLI(t, home, "session", "export", id, "--output", "-")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Equal(t, id, gjson.Get(stdout, "id").String())
	assert.True(t, gjson.Get(stdout, "createdAt").Exists())
}

func TestSessionExportRejectsUnknownFormat(t *testing.T) {
	home := t.TempDir()
	id := newSession(t, home)

	_, _, err := executeCLI(t, home, "session", "export", id, "--format", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestAuthSetRequiresSecretValueFlag(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "auth", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"secret-value\" not set")
}

func TestAuthSetStatusRemove(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OPENAI_API", "")
	t.Setenv("PATH", "")

	stdout, _, err := executeCLI(t, home, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "credential: missing")

	_, _, err = executeCLI(t, home, "auth", "set", "--secret-value", "sk-test-123")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "credential: configured")
	assert.Contains(t, stdout, "secret ref: openai/api_key")
	assert.NotContains(t, stdout, "sk-test-123")

	_, _, err = executeCLI(t, home, "auth", "remove")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "credential: missing")
}

func TestAuthStatusSeesEnvironmentCredential(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OPENAI_API", "sk-env")

	stdout, _, err := executeCLI(t, home, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "credential: configured")
	assert.Contains(t, stdout, "env OPENAI_API: set")
}

func TestChatStreamsReplyThroughRelay(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OPENAI_API", "sk-test")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		payload, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "gpt-5", gjson.GetBytes(payload, "model").String())
		assert.True(t, gjson.GetBytes(payload, "stream").Bool())
		assert.Equal(t, 0.2, gjson.GetBytes(payload, "temperature").Float())
		assert.Equal(t, "What is osmosis?", gjson.GetBytes(payload, `input.#(role=="user").content`).String())

		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"Water moves ", "across a membrane."} {
			_, _ = fmt.Fprintf(w, "event: response.output_text.delta\ndata: {\"type\":\"response.output_text.delta\",\"delta\":%q}\n\n", delta)
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(upstream.Close)

	relayServer := newRelayServer(t, upstream)

	id := newSession(t, home)

	stdout, _, err := executeCLI(t, home,
		"chat", id, "What", "is", "osmosis?",
		"--relay-url", relayServer.URL+httpadapter.ChatPath,
		"--temperature", "0.2",
	)
	require.NoError(t, err)
	assert.Equal(t, "Water moves across a membrane.\n", stdout)

	stdout, _, err = executeCLI(t, home, "session", "show", id, "--json")
	require.NoError(t, err)
	contents := gjson.Get(stdout, "messages.#.content").Array()
	require.Len(t, contents, 3)
	assert.Equal(t, "What is osmosis?", contents[1].String())
	assert.Equal(t, "Water moves across a membrane.", contents[2].String())
	assert.Equal(t, "What is osmosis?", gjson.Get(stdout, "title").String())
}

func TestChatWithEmptyReplyRecordsNothing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OPENAI_API", "sk-test")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"type\":\"response.completed\"}\n\n")
	}))
	t.Cleanup(upstream.Close)

	relayServer := newRelayServer(t, upstream)
	id := newSession(t, home)

	stdout, stderr, err := executeCLI(t, home, "chat", id, "Hello", "--relay-url", relayServer.URL+httpadapter.ChatPath)
	require.NoError(t, err)
	assert.Equal(t, "\n", stdout)
	assert.Contains(t, stderr, "empty reply")

	stdout, _, err = executeCLI(t, home, "session", "show", id, "--json")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.Get(stdout, "messages.#").Int())
}

func TestChatSurfacesRelayError(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OPENAI_API", "")

	chat := relay.New(
		openai.NewClient("http://127.0.0.1:1", nil),
		envstore.NewStore(map[string]string{relay.DefaultCredentialRef: "OPENAI_API"}),
		observability.Discard(),
		relay.Config{},
	)
	relayServer := httptest.NewServer(httpadapter.NewServer(chat, observability.Discard()))
	t.Cleanup(relayServer.Close)

	id := newSession(t, home)

	_, _, err := executeCLI(t, home, "chat", id, "Hello", "--relay-url", relayServer.URL+httpadapter.ChatPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay returned 500")

	stdout, _, err := executeCLI(t, home, "session", "show", id, "--json")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.Get(stdout, "messages.#").Int())
}

func TestChatRejectsUnknownSession(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "chat", "missing", "Hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestMemoryBackendFromEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RAI_SESSIONS_BACKEND", "memory")

	_ = newSession(t, home)

	_, err := os.Stat(filepath.Join(home, ".revisionai", "sessions.toml"))
	assert.True(t, os.IsNotExist(err))
}

func TestInvalidConfigSurfacesOnEveryCommand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RAI_LOG_FORMAT", "xml")

	_, _, err := executeCLI(t, home, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported log format")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func newRelayServer(t *testing.T, upstream *httptest.Server) *httptest.Server {
	t.Helper()

	chat := relay.New(
		openai.NewClient(upstream.URL, upstream.Client()),
		envstore.NewStore(map[string]string{relay.DefaultCredentialRef: "OPENAI_API"}),
		observability.Discard(),
		relay.Config{},
	)
	server := httptest.NewServer(httpadapter.NewServer(chat, observability.Discard()))
	t.Cleanup(server.Close)
	return server
}

func newSession(t *testing.T, home string) string {
	t.Helper()

	stdout, _, err := executeCLI(t, home, "session", "new")
	require.NoError(t, err)

	fields := strings.Fields(stdout)
	require.NotEmpty(t, fields)
	return fields[0]
}

func firstSessionID(t *testing.T, home string) string {
	t.Helper()

	stdout, _, err := executeCLI(t, home, "session", "list", "--json")
	require.NoError(t, err)

	id := gjson.Get(stdout, "0.ID").String()
	require.NotEmpty(t, id)
	return id
}
