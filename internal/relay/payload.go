package relay

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	DefaultModel        = "gpt-5"
	DefaultSystemPrompt = "You are a helpful assistant that continues the conversation based on the provided context."

	summaryPrefix = "Previous session summary:\n"
	textModality  = "text"
)

// DefaultAllowedOptions are the caller options merged into the upstream
// payload when no allow-list is configured.
var DefaultAllowedOptions = []string{
	"temperature",
	"top_p",
	"max_output_tokens",
	"reasoning",
	"metadata",
	"user",
}

type PayloadConfig struct {
	Model          string
	SystemPrompt   string
	AllowedOptions []string
}

// BuildPayload renders the upstream request body for a validated request.
// It returns the names of caller options that were not allowed and so left
// out.
func BuildPayload(request Request, config PayloadConfig) ([]byte, []string, error) {
	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	systemPrompt := config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	input, err := buildInput(request, systemPrompt)
	if err != nil {
		return nil, nil, err
	}

	payload := []byte(`{}`)
	if payload, err = sjson.SetBytes(payload, "model", model); err != nil {
		return nil, nil, fmt.Errorf("set payload model: %w", err)
	}
	if payload, err = sjson.SetBytes(payload, "modality", textModality); err != nil {
		return nil, nil, fmt.Errorf("set payload modality: %w", err)
	}
	if payload, err = sjson.SetRawBytes(payload, "input", input); err != nil {
		return nil, nil, fmt.Errorf("set payload input: %w", err)
	}
	if payload, err = sjson.SetBytes(payload, "stream", true); err != nil {
		return nil, nil, fmt.Errorf("set payload stream: %w", err)
	}

	if !request.HasOptions() {
		return payload, nil, nil
	}

	allowed := allowSet(config.AllowedOptions)
	var dropped []string
	var mergeErr error
	request.Options.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if _, ok := allowed[name]; !ok {
			dropped = append(dropped, name)
			return true
		}

		payload, mergeErr = sjson.SetRawBytes(payload, escapePath(name), []byte(value.Raw))
		if mergeErr != nil {
			mergeErr = fmt.Errorf("merge option %q: %w", name, mergeErr)
			return false
		}
		return true
	})
	if mergeErr != nil {
		return nil, nil, mergeErr
	}

	return payload, dropped, nil
}

func buildInput(request Request, systemPrompt string) ([]byte, error) {
	input := []byte(`[]`)
	var err error

	if request.Summary != "" {
		input, err = sjson.SetBytes(input, "-1", systemMessage(summaryPrefix+request.Summary))
		if err != nil {
			return nil, fmt.Errorf("append summary message: %w", err)
		}
	}

	input, err = sjson.SetBytes(input, "-1", systemMessage(systemPrompt))
	if err != nil {
		return nil, fmt.Errorf("append system prompt: %w", err)
	}

	for _, message := range request.Messages {
		input, err = sjson.SetRawBytes(input, "-1", []byte(message.Raw))
		if err != nil {
			return nil, fmt.Errorf("append message: %w", err)
		}
	}

	return input, nil
}

func systemMessage(content string) map[string]string {
	return map[string]string{"role": "system", "content": content}
}

func allowSet(names []string) map[string]struct{} {
	if names == nil {
		names = DefaultAllowedOptions
	}

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// escapePath makes an option name usable as a literal sjson key.
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@', '!', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
