package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pliu/warbler/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Open migrates before returning.
			cfg, s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database\n", cfg.Driver())
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every row from every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all data without --yes")
			}
			_, s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := store.WithTx(cmd.Context(), s, func(tx store.Tx) error {
				return tx.Purge(cmd.Context())
			}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All tables purged")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting all data")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var counts store.Counts
			if err := store.WithTx(cmd.Context(), s, func(tx store.Tx) error {
				counts, err = tx.Counts(cmd.Context())
				return err
			}); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(counts)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tROWS")
			fmt.Fprintf(w, "users\t%d\n", counts.Users)
			fmt.Fprintf(w, "messages\t%d\n", counts.Messages)
			fmt.Fprintf(w, "follows\t%d\n", counts.Follows)
			fmt.Fprintf(w, "likes\t%d\n", counts.Likes)
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
