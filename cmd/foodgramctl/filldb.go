package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/service"
)

func newFillDBCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "filldb",
		Short: "Fill the database with random recipes and favourites",
		Long:  "Gives every user up to ten random recipes and then favourites among other users' recipes. Tags and ingredients must be loaded first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			return withApp(func(a *app) error {
				seeder := service.NewSeeder(a.db, rand.New(rand.NewSource(seed)), a.log)
				result, err := seeder.FillDB(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d recipes and %d favourites (seed %d)\n", result.Recipes, result.Favourites, seed)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, defaults to the current time")
	return cmd
}
