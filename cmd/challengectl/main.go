// Command challengectl manages daily challenge content from the command line.
package main

import (
	"fmt"
	"log"
	"os"

	"gameplatform/config"
	"gameplatform/database"
	"gameplatform/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	store     *database.Store
	generator *services.ContentGenerator
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "challengectl",
		Short: "Manage daily challenge content",
		Long: `challengectl generates and inspects daily puzzle challenges.

It connects to the same database as the API server and uses the same
content generation pipeline, so challenges created here are immediately
visible to players.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("Warning: .env file not found, using system environment variables")
			}

			loaded, err := config.LoadOrDefault(os.Getenv("CONFIG_PATH"))
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg = loaded

			database.InitDB()
			database.SeedGames(cfg)
			store = database.NewStore(database.GetDB())
			generator = services.NewContentGenerator(store, cfg)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newGamesCmd())

	return rootCmd
}

func newGenerateCmd() *cobra.Command {
	var (
		game  string
		days  int
		force bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate upcoming daily challenges",
		RunE: func(cmd *cobra.Command, args []string) error {
			if game == "" {
				generator.GenerateAll(days, force)
				return nil
			}

			g, err := store.GameBySlug(game)
			if err != nil {
				return fmt.Errorf("unknown game %q: %w", game, err)
			}
			generated, err := generator.GenerateDailyChallenges(g, days, force)
			if err != nil {
				return err
			}
			for _, ch := range generated {
				fmt.Printf("%s  #%d  difficulty %d  (%s)\n",
					ch.ChallengeDate, ch.ChallengeNumber, ch.Difficulty, ch.GeneratedBy)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game slug (default: all daily-enabled games)")
	cmd.Flags().IntVar(&days, "days", 0, "Days to generate ahead (default: configured value)")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate challenges that already exist")

	return cmd
}

func newGamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List daily-enabled games",
		RunE: func(cmd *cobra.Command, args []string) error {
			games, err := store.DailyEnabledGames()
			if err != nil {
				return err
			}
			for _, g := range games {
				fmt.Printf("%-20s %-12s generates %d days ahead\n",
					g.Slug, g.Type, cfg.Daily.GenerateAheadDays)
			}
			return nil
		},
	}
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
