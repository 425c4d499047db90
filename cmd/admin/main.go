// Command admin provides maintenance utilities for reelhub deployments.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"reelhub/internal/backend"
	"reelhub/internal/bootstrap"
	"reelhub/internal/config"
	"reelhub/internal/database"
	"reelhub/internal/seed"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Flag variables.
var (
	seedOpts = seed.DefaultOptions()
	timeout  time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Maintenance commands for the reelhub backend.",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with generated profiles, posts, likes, comments and follows.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		cfg := loadConfig()
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to seed a production database")
		}
		rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close(ctx) }()

		report, err := seed.Run(ctx, rt.SeedServices(), seedOpts)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d profiles, %d posts, %d likes, %d comments, %d follows\n",
			report.Profiles, report.Posts, report.Likes, report.Comments, report.Follows)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge-orphans",
	Short: "Delete likes and comments whose post no longer exists.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		client := backend.New(loadConfig().Backend())
		if err := client.EnsureReady(ctx); err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		report, err := client.Repositories().Posts.PurgeOrphans(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d orphaned likes and %d orphaned comments\n", report.Likes, report.Comments)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every collection table.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		if err := database.Migrate(db, cfg.Collections); err != nil {
			return err
		}
		fmt.Println("Migrations applied")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration without secrets.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// init defines the commands and their flags.
func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute,
		"Give up after this long.")

	seedCmd.Flags().IntVar(&seedOpts.Users, "users", seedOpts.Users,
		"Number of profiles to create.")
	seedCmd.Flags().IntVar(&seedOpts.PostsPerUser, "posts", seedOpts.PostsPerUser,
		"Posts per profile.")
	seedCmd.Flags().IntVar(&seedOpts.CommentsPerPost, "comments", seedOpts.CommentsPerPost,
		"Maximum comments per post.")
	seedCmd.Flags().IntVar(&seedOpts.LikeChance, "like-chance", seedOpts.LikeChance,
		"Percent chance that a profile likes a given post.")
	seedCmd.Flags().IntVar(&seedOpts.FollowChance, "follow-chance", seedOpts.FollowChance,
		"Percent chance that a profile follows another.")
	seedCmd.Flags().Int64Var(&seedOpts.Seed, "seed", 0,
		"Random seed. Zero picks one.")

	rootCmd.AddCommand(seedCmd, purgeCmd, migrateCmd, configCmd)
}
