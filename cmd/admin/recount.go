package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/shaygp/boxd/internal/counters"
	"github.com/shaygp/boxd/internal/output"
	"github.com/spf13/cobra"
)

var (
	recountKinds []string
	recountFix   bool
)

var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Compare stored counters with the edges they count",
	Long: `Recount walks every counter owner and compares the stored counts with
the follow, like and comment rows behind them. Drift is reported; with --fix
the stored counts are overwritten with the recomputed ones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds, err := parseKinds(recountKinds)
		if err != nil {
			return err
		}

		_, c, err := bootstrap()
		if err != nil {
			return err
		}
		defer c.Cleanup(cmd.Context())

		repos := c.Repositories()
		reconciler := counters.NewReconciler(c.Counters(), c.Graph(), repos.Likes, repos.Comments)

		var drifts []counters.Drift
		checked := 0
		for _, kind := range kinds {
			d, n, err := reconciler.CheckAll(cmd.Context(), kind, recountFix)
			drifts = append(drifts, d...)
			checked += n
			if err != nil {
				return fmt.Errorf("recount %s: %w", kind, err)
			}
		}

		if len(drifts) == 0 {
			out.Success("Checked %d owners, no drift", checked)
			if out.Format() == output.FormatJSON {
				return out.Rows([]counters.Drift{}, nil, nil)
			}
			return nil
		}

		rows := make([][]string, 0, len(drifts))
		for _, d := range drifts {
			rows = append(rows, []string{
				string(d.Owner.Kind), d.Owner.ID, string(d.Field),
				strconv.FormatInt(d.Stored, 10), strconv.FormatInt(d.Actual, 10),
			})
		}
		if err := out.Rows(drifts, []string{"KIND", "ID", "FIELD", "STORED", "ACTUAL"}, rows); err != nil {
			return err
		}

		if recountFix {
			out.Success("Checked %d owners, fixed %d counters", checked, len(drifts))
		} else {
			out.Warning("Checked %d owners, %d counters drifted (rerun with --fix to correct)", checked, len(drifts))
		}
		return nil
	},
}

func init() {
	recountCmd.Flags().StringSliceVar(&recountKinds, "kind", nil, "Owner kinds to check (user, raceLog, list, comment); default all")
	recountCmd.Flags().BoolVar(&recountFix, "fix", false, "Overwrite drifted counters")
}

func parseKinds(names []string) ([]counters.OwnerKind, error) {
	all := counters.Kinds()
	if len(names) == 0 {
		return all, nil
	}
	kinds := make([]counters.OwnerKind, 0, len(names))
	for _, name := range names {
		kind := counters.OwnerKind(name)
		if !slices.Contains(all, kind) {
			return nil, fmt.Errorf("unknown counter owner %q", name)
		}
		if !slices.Contains(kinds, kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}
