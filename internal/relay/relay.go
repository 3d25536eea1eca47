package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/revisionai/internal/domain"
	"github.com/bnema/revisionai/internal/ports"
)

const (
	DefaultMaxBodyBytes  = 1 << 20
	DefaultCredentialRef = "openai/api_key"

	maxDetailBytes = 1 << 20
)

type state string

const (
	stateReceived        state = "received"
	stateValidated       state = "validated"
	stateUpstreamCalling state = "upstream_calling"
	stateStreaming       state = "streaming"
	stateClosed          state = "closed"
	stateRejected        state = "rejected"
	stateUpstreamFailed  state = "upstream_failed"
)

type Config struct {
	Model          string
	SystemPrompt   string
	AllowedOptions []string
	// MaxBodyBytes caps the inbound request body and any single upstream
	// line.
	MaxBodyBytes int64
	// Timeout bounds the whole upstream exchange. Zero means no deadline
	// beyond the inbound request's own context.
	Timeout       time.Duration
	CredentialRef string
}

// Relay handles POST chat requests: one request, one upstream call, one
// event stream back. It holds no per-request state.
type Relay struct {
	upstream ports.Upstream
	secrets  ports.SecretStore
	logger   *slog.Logger
	config   Config
}

var _ http.Handler = (*Relay)(nil)

func New(upstream ports.Upstream, secrets ports.SecretStore, logger *slog.Logger, config Config) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if config.CredentialRef == "" {
		config.CredentialRef = DefaultCredentialRef
	}

	return &Relay{
		upstream: upstream,
		secrets:  secrets,
		logger:   logger.With("component", "relay"),
		config:   config,
	}
}

func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, &Error{Kind: KindClientValidation, Status: http.StatusMethodNotAllowed, Message: "Method not allowed."})
		return
	}

	r.enter(ctx, stateReceived)

	request, relayErr := r.readRequest(w, req)
	if relayErr != nil {
		r.reject(ctx, w, relayErr)
		return
	}
	r.enter(ctx, stateValidated, "messages", len(request.Messages))

	credential, relayErr := r.credential(ctx)
	if relayErr != nil {
		r.reject(ctx, w, relayErr)
		return
	}

	payload, dropped, err := BuildPayload(request, PayloadConfig{
		Model:          r.config.Model,
		SystemPrompt:   r.config.SystemPrompt,
		AllowedOptions: r.config.AllowedOptions,
	})
	if err != nil {
		r.reject(ctx, w, &Error{Kind: KindClientValidation, Status: http.StatusBadRequest, Message: "Invalid request payload.", Err: err})
		return
	}
	if len(dropped) > 0 {
		r.logger.WarnContext(ctx, "dropped options outside the allow-list", "options", dropped)
	}

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	r.enter(ctx, stateUpstreamCalling)
	response, err := r.upstream.Open(ctx, payload, credential)
	if err != nil {
		r.fail(ctx, w, &Error{
			Kind:    KindUpstreamUnreachable,
			Status:  http.StatusBadGateway,
			Message: msgUpstreamUnreachable,
			Err:     err,
		})
		return
	}
	if response.Body != nil {
		defer response.Body.Close()
	}

	if !isSuccess(response.StatusCode) || response.Body == nil || response.Body == http.NoBody {
		r.fail(ctx, w, rejectedError(response))
		return
	}

	r.enter(ctx, stateStreaming)
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache, no-transform")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sent, err := pump(response.Body, newEventWriter(w), int(r.config.MaxBodyBytes))
	if err != nil {
		relayErr := &Error{Kind: KindStreamCorruption, Status: http.StatusBadGateway, Message: "stream aborted", Err: err}
		r.logger.ErrorContext(ctx, "upstream stream failed", "kind", relayErr.Kind.String(), "events", sent, "error", err)
		r.enter(ctx, stateUpstreamFailed)
		panic(http.ErrAbortHandler)
	}

	r.enter(ctx, stateClosed, "events", sent)
}

func (r *Relay) readRequest(w http.ResponseWriter, req *http.Request) (Request, *Error) {
	if req.Body == nil {
		return Request{}, validationError(errBodyNotObject)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, r.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Request{}, &Error{Kind: KindClientValidation, Status: http.StatusRequestEntityTooLarge, Message: msgBodyTooLarge, Err: err}
		}
		return Request{}, &Error{Kind: KindClientValidation, Status: http.StatusBadRequest, Message: errBodyNotObject, Err: err}
	}

	request, err := ValidateRequest(body)
	if err != nil {
		var relayErr *Error
		if errors.As(err, &relayErr) {
			return Request{}, relayErr
		}
		return Request{}, validationError(errBodyNotObject)
	}

	return request, nil
}

func (r *Relay) credential(ctx context.Context) (string, *Error) {
	notConfigured := func(err error) *Error {
		return &Error{Kind: KindConfiguration, Status: http.StatusInternalServerError, Message: msgServiceNotConfigured, Err: err}
	}

	if r.secrets == nil {
		return "", notConfigured(errors.New("no secret store"))
	}

	value, err := r.secrets.Get(ctx, r.config.CredentialRef)
	if err != nil {
		return "", notConfigured(fmt.Errorf("get upstream credential %q: %w", r.config.CredentialRef, err))
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", notConfigured(fmt.Errorf("upstream credential %q: %w", r.config.CredentialRef, domain.ErrSecretNotFound))
	}

	return value, nil
}

func (r *Relay) enter(ctx context.Context, s state, args ...any) {
	r.logger.DebugContext(ctx, "relay state", append([]any{"state", string(s)}, args...)...)
}

func (r *Relay) reject(ctx context.Context, w http.ResponseWriter, err *Error) {
	level := slog.LevelInfo
	if err.Kind == KindConfiguration {
		level = slog.LevelError
	}
	r.logger.Log(ctx, level, "request rejected", "kind", err.Kind.String(), "status", err.Status, "error", err)
	r.enter(ctx, stateRejected)
	writeError(w, err)
}

func (r *Relay) fail(ctx context.Context, w http.ResponseWriter, err *Error) {
	r.logger.ErrorContext(ctx, "upstream call failed", "kind", err.Kind.String(), "status", err.Status, "detail", err.Detail, "error", err)
	r.enter(ctx, stateUpstreamFailed)
	writeError(w, err)
}

func rejectedError(response *ports.UpstreamResponse) *Error {
	detail := readDetail(response)

	status := response.StatusCode
	if status == 0 || isSuccess(status) {
		status = http.StatusBadGateway
	}

	return &Error{
		Kind:           KindUpstreamRejected,
		Status:         status,
		Message:        msgUpstreamRejected,
		UpstreamStatus: response.StatusCode,
		Detail:         detail,
	}
}

func readDetail(response *ports.UpstreamResponse) string {
	if response.Body != nil {
		data, err := io.ReadAll(io.LimitReader(response.Body, maxDetailBytes))
		if err == nil && len(data) > 0 {
			return string(data)
		}
	}

	if text := http.StatusText(response.StatusCode); text != "" {
		return text
	}
	return response.Status
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
