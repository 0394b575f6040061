package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/service"
)

func newLoadIngredientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load-ingredients <file.csv>",
		Short: "Import the ingredient catalogue from a name,unit CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			return withApp(func(a *app) error {
				result, err := service.NewIngredientService(a.db, a.log).LoadCSV(cmd.Context(), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ingredients loaded: %d created, %d already present\n", result.Created, result.Existing)
				return nil
			})
		},
	}
}

func newSeedTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-tags",
		Short: "Create the breakfast, lunch and dinner tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				if err := service.NewTagService(a.db, a.cache, a.log).SeedTags(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tags seeded: %d\n", len(service.DefaultTags))
				return nil
			})
		},
	}
}
