package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/starspot-simulator/internal/store"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List light-curve runs recorded in the archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRuns(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().StringVar(&storePath, "store", "", "SQLite archive path")
	viper.BindPFlag("store", runsCmd.Flags().Lookup("store"))
}

func runRuns(cmd *cobra.Command) error {
	path := viper.GetString("store")
	if path == "" {
		return fmt.Errorf("no archive path given (use --store or the SPOTSIM_STORE environment variable)")
	}

	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tMODE\tSAMPLES\tREALIZATIONS")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Mode, r.Samples, r.Realizations)
	}
	return w.Flush()
}
