package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"simvex/internal/catalog"
	"simvex/internal/viewer"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List and show assemblies",
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List assemblies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDISPLAY\tCATEGORY\tPARTS")
			for _, a := range catalog.Default().Search(search) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.ID, a.Name, a.DisplayName, a.Category, len(a.Parts))
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&search, "search", "", "filter by name or category")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the parts and groups of one assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := catalog.Default().Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s) - %d parts\n\n", a.Name, a.DisplayName, len(a.Parts))

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "GROUP\tSIZE\tPARTS")
			for _, g := range a.Groups() {
				fmt.Fprintf(w, "%s\t%d\t%v\n", viewer.ModelName(g.ModelRef), len(g.PartIDs), g.PartIDs)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func newExplodeCmd() *cobra.Command {
	var partID string
	cmd := &cobra.Command{
		Use:   "explode <id> <factor>",
		Short: "Print where each part is drawn at an explosion factor",
		Long: `Print the display position of every part at the given explosion
factor. The factor is clamped to [0, 0.5].`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := catalog.Default().Get(args[0])
			if err != nil {
				return err
			}
			factor, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("factor: %w", err)
			}
			s := viewer.SetExplosion(viewer.NewViewState(a), factor)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PART\tX\tY\tZ")
			found := false
			for _, p := range a.Parts {
				if partID != "" && p.ID != partID {
					continue
				}
				found = true
				pos := viewer.DisplayTransform(p, s).Position
				fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\n", p.ID, pos.X, pos.Y, pos.Z)
			}
			if !found {
				return fmt.Errorf("%w: %s", viewer.ErrUnknownPart, partID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&partID, "part", "", "only print this part")
	return cmd
}
