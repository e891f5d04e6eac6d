package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Dosada05/football-tournaments/repositories"
	"github.com/Dosada05/football-tournaments/services"
)

func newDrawCheckCommand() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "draw-check <age-group-id>",
		Short: "Print pot distribution and draw readiness of an age group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ageGroupID, err := strconv.Atoi(args[0])
			if err != nil || ageGroupID <= 0 {
				return fmt.Errorf("invalid age group id %q", args[0])
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			// только чтение: уведомления, почта и hub не нужны
			drawService := services.NewDrawService(services.DrawServiceDeps{
				AgeGroupRepo:     repositories.NewPostgresAgeGroupRepository(a.db),
				TournamentRepo:   repositories.NewPostgresTournamentRepository(a.db),
				RegistrationRepo: repositories.NewPostgresRegistrationRepository(a.db),
				DrawRepo:         repositories.NewPostgresDrawRepository(a.db),
				Logger:           a.logger,
			})
			overview, err := drawService.GetPots(cmd.Context(), ageGroupID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(overview); err != nil {
				return err
			}
			if !overview.CanExecuteDraw {
				return fmt.Errorf("age group %d is not ready for the draw", ageGroupID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", true, "indent JSON output")
	return cmd
}
