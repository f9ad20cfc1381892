package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	pgrepo "github.com/yourusername/talatrivia-api/internal/repository/postgres"
	"github.com/yourusername/talatrivia-api/internal/service"
)

func newSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset (players, questions, trivias)",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.close()

			data, err := service.LoadSeedData()
			if err != nil {
				return err
			}
			seeder := service.NewSeedService(
				pgrepo.NewUserRepo(env.db),
				pgrepo.NewQuestionRepo(env.db),
				pgrepo.NewTriviaRepo(env.db),
				data,
				env.log,
			)
			result, err := seeder.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: users=%d questions=%d trivias=%d\n",
				result.Message, result.UsersCreated, result.QuestionsCreated, result.TriviasCreated)
			return nil
		},
	}
}
