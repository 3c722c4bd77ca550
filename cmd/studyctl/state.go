package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"simvex/internal/common/middleware"
)

func newStateCmd(opts *options) *cobra.Command {
	var owner, assemblyID string

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show or reset stored study state",
	}
	cmd.PersistentFlags().StringVar(&owner, "owner", middleware.AnonymousOwner, `owner namespace, e.g. "user:<id>" or "client:<id>"`)
	cmd.PersistentFlags().StringVar(&assemblyID, "assembly", "1", "assembly id")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored view state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, _, closeFn, err := openController(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			view, err := ctrl.Load(cmd.Context(), owner, assemblyID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view.State)
		},
	}

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored state, note, chat and camera of one assembly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			ctrl, _, closeFn, err := openController(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			view, err := ctrl.ResetAll(cmd.Context(), owner, assemblyID, true)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s for %s\n", view.Name, owner)
			return nil
		},
	}
	reset.Flags().BoolVar(&yes, "yes", false, "confirm the reset")

	keys := &cobra.Command{
		Use:   "keys",
		Short: "List the keys stored for the owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, kv, closeFn, err := openController(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			stored, err := kv.Keys(cmd.Context(), owner)
			if err != nil {
				return err
			}
			for _, k := range stored {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}

	cmd.AddCommand(show, reset, keys)
	return cmd
}
