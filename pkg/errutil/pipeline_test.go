package errutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", &ValidationError{Code: "validation_missing_fields"}, KindValidation},
		{"credit", fmt.Errorf("debit: %w", &CreditError{Code: "insufficient_credits"}), KindCredit},
		{"config", &ConfigError{Code: "generation_config_missing", Missing: []string{"REPLICATE_API_TOKEN"}}, KindConfig},
		{"provider", &ProviderError{Provider: "replicate", StatusCode: 402}, KindProvider},
		{"timeout", &TimeoutError{Code: "did_timeout", Attempts: 60}, KindTimeout},
		{"empty audio", fmt.Errorf("synthesize: %w", ErrEmptyAudio), KindEmptyAudio},
		{"composition", &CompositionError{Err: errors.New("exit status 1")}, KindComposition},
		{"unknown", errors.New("boom"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{Provider: "replicate", Operation: "create", StatusCode: 402, Body: "Payment Required"}

	require.Equal(t, "replicate create error (402): Payment Required", err.Error())
	require.Equal(t, http.StatusBadGateway, StatusOf(err).HTTPStatus())
}

func TestBaseErrorStatus(t *testing.T) {
	err := NotFound("order not found")

	require.Equal(t, StatusNotFound, StatusOf(err))
	require.Equal(t, http.StatusNotFound, StatusOf(err).HTTPStatus())
	require.Equal(t, StatusInternal, StatusOf(errors.New("plain")))
	require.Contains(t, err.Error(), "[not_found] order not found")
}
