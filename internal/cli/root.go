// Package cli implements orderctl, the operator tool for submitting orders,
// inspecting them and managing user credits.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"luxlife-studio/services/credit"
	"luxlife-studio/services/order"
)

// Backend is what the commands operate on.
type Backend struct {
	Orders  *order.Service
	Credits *credit.Service
}

// Opener connects a Backend. The returned func releases it.
type Opener func(ctx context.Context) (*Backend, func(), error)

type RootOptions struct {
	open Opener
}

// NewRootCommand builds the orderctl command tree on top of open.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:           "orderctl",
		Short:         "Operate the LuxLife generation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewRetryCommand(opts))
	cmd.AddCommand(NewCreditsCommand(opts))

	return cmd
}

// withBackend opens the backend for the duration of fn.
func (o *RootOptions) withBackend(cmd *cobra.Command, fn func(*Backend) error) error {
	b, closeFn, err := o.open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(b)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
