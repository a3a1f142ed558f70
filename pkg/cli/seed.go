package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cancelflow/database"
	"cancelflow/entities"
	subRepoImp "cancelflow/pkg/subscription/repositoryImp"
)

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		userID string
		price  int
	)
	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Create an active subscription for a user",
		Example: "  cancelflow seed --user u1 --price 2500",
		RunE: func(cmd *cobra.Command, args []string) error {
			if price < 0 {
				return fmt.Errorf("--price must not be negative")
			}
			db, err := database.OpenSQLite(rootOpts.Config.DBPath)
			if err != nil {
				return err
			}
			sub := &entities.Subscription{UserID: userID, MonthlyPrice: price, Status: "active"}
			if err := subRepoImp.New(db).Create(cmd.Context(), sub); err != nil {
				return fmt.Errorf("create subscription: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subscription %s for %s at %d cents\n", sub.ID, sub.UserID, sub.MonthlyPrice)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().IntVar(&price, "price", 2500, "monthly price in cents")
	return cmd
}
