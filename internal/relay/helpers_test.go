package relay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/bnema/revisionai/internal/domain"
	"github.com/bnema/revisionai/internal/observability"
	"github.com/bnema/revisionai/internal/ports"
)

const validBody = `{"messages":[{"role":"user","content":"Explain osmosis"}]}`

// chunkReader hands out one chunk per Read call, then err (io.EOF if nil).
type chunkReader struct {
	mu     sync.Mutex
	chunks [][]byte
	err    error
}

func newChunkReader(err error, chunks ...string) *chunkReader {
	r := &chunkReader{err: err}
	for _, chunk := range chunks {
		r.chunks = append(r.chunks, []byte(chunk))
	}
	return r
}

func (r *chunkReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}

	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func (r *chunkReader) Close() error {
	return nil
}

type staticSecrets map[string]string

func (s staticSecrets) Get(_ context.Context, key string) (string, error) {
	value, ok := s[key]
	if !ok {
		return "", domain.ErrSecretNotFound
	}
	return value, nil
}

func (s staticSecrets) Put(context.Context, string, string) error { return nil }

func (s staticSecrets) Delete(context.Context, string) error { return nil }

func withCredential() staticSecrets {
	return staticSecrets{DefaultCredentialRef: "sk-test"}
}

func okResponse(body io.ReadCloser) *ports.UpstreamResponse {
	return &ports.UpstreamResponse{StatusCode: http.StatusOK, Status: "200 OK", Body: body}
}

func newTestRelay(upstream ports.Upstream, secrets ports.SecretStore) *Relay {
	return New(upstream, secrets, observability.Discard(), Config{})
}

func post(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
