package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"luxlife-studio/pkg/task"
	"luxlife-studio/services/order"
)

func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var in order.CreateInput

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Create an order and publish its creation trigger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withBackend(cmd, func(b *Backend) error {
				o, err := b.Orders.Create(cmd.Context(), in)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), o)
			})
		},
	}

	cmd.Flags().StringVar(&in.UserID, "uid", "", "owner user id")
	cmd.Flags().StringVar(&in.Email, "email", "", "notification address")
	cmd.Flags().StringVar(&in.SourcePath, "source", "", "portrait object path")
	cmd.Flags().StringVar(&in.SceneID, "scene-id", "", "scene identifier")
	cmd.Flags().StringVar(&in.Scene, "scene", "", "scene name")
	cmd.Flags().StringVar(&in.Tagline, "tagline", "", "tagline, also used as the voice-over")
	cmd.Flags().StringVar(&in.Prompt, "prompt", "", "extra background prompt")

	return cmd
}

func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <order-id>",
		Short: "Print an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withBackend(cmd, func(b *Backend) error {
				o, err := b.Orders.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), o)
			})
		},
	}
}

// NewRetryCommand republishes the trigger for the stage an order is waiting
// in. Orders in any other state are left alone.
func NewRetryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <order-id>",
		Short: "Republish the pending trigger of a stuck order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withBackend(cmd, func(b *Backend) error {
				ctx := cmd.Context()
				o, err := b.Orders.Get(ctx, args[0])
				if err != nil {
					return err
				}

				switch o.Status {
				case order.StatusPending:
					err = b.Orders.PublishCreated(ctx, o.ID)
				case order.StatusQueuedGeneration:
					err = b.Orders.PublishQueuedGeneration(ctx, o.ID, order.StatusQueuedValidation)
				default:
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "order %s is %s; nothing to retry\n", o.ID, o.Status)
					return err
				}
				if errors.Is(err, task.ErrAlreadyQueued) {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "order %s: trigger for %s is already queued\n", o.ID, o.Status)
					return err
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "order %s: trigger for %s republished\n", o.ID, o.Status)
				return err
			})
		},
	}
}
