package errutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind names the pipeline error taxonomy used in logs and failure reports.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindCredit      Kind = "credit"
	KindConfig      Kind = "config"
	KindProvider    Kind = "provider"
	KindTimeout     Kind = "timeout"
	KindEmptyAudio  Kind = "empty_audio"
	KindComposition Kind = "composition"
	KindUnknown     Kind = "unknown"
)

var ErrEmptyAudio = errors.New("tts_empty_audio")

// ValidationError reports order input that cannot be processed.
type ValidationError struct {
	Code    string
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Status() CoreStatus { return StatusValidationFailed }

type CreditError struct {
	Code    string
	Message string
}

func (e *CreditError) Error() string { return e.Message }

func (e *CreditError) Status() CoreStatus { return StatusPaymentRequired }

// ConfigError lists configuration keys that must be set before a stage runs.
type ConfigError struct {
	Code    string
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: missing %s", e.Code, strings.Join(e.Missing, ", "))
}

func (e *ConfigError) Status() CoreStatus { return StatusServiceUnavailable }

// ProviderError is a non-success response from a third-party API.
type ProviderError struct {
	Provider   string
	Operation  string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s error (%d): %s", e.Provider, e.Operation, e.StatusCode, e.Body)
}

func (e *ProviderError) Status() CoreStatus { return StatusBadGateway }

type TimeoutError struct {
	Code     string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s after %d attempts", e.Code, e.Attempts)
}

func (e *TimeoutError) Status() CoreStatus { return StatusGatewayTimeout }

type CompositionError struct {
	Output string
	Err    error
}

func (e *CompositionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("composition failed: %v: %s", e.Err, e.Output)
	}
	return fmt.Sprintf("composition failed: %v", e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }

func (e *CompositionError) Status() CoreStatus { return StatusInternal }

// KindOf classifies err into the pipeline taxonomy.
func KindOf(err error) Kind {
	var (
		validation  *ValidationError
		credit      *CreditError
		cfg         *ConfigError
		provider    *ProviderError
		timeout     *TimeoutError
		composition *CompositionError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &credit):
		return KindCredit
	case errors.As(err, &cfg):
		return KindConfig
	case errors.As(err, &provider):
		return KindProvider
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrEmptyAudio):
		return KindEmptyAudio
	case errors.As(err, &composition):
		return KindComposition
	default:
		return KindUnknown
	}
}
