package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cancelflow/database"
	cancelRepoImp "cancelflow/pkg/cancellation/repositoryImp"
	"cancelflow/pkg/report"
	subRepoImp "cancelflow/pkg/subscription/repositoryImp"
)

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every cancellation flow to an .xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.OpenSQLite(rootOpts.Config.DBPath)
			if err != nil {
				return err
			}
			rows, err := report.NewBuilder(cancelRepoImp.New(db), subRepoImp.New(db)).Rows(cmd.Context())
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.Write(f, rows); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d flows to %s\n", len(rows), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "cancellations.xlsx", "output file")
	return cmd
}
