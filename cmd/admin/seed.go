package main

import (
	"github.com/shaygp/boxd/internal/seed"
	"github.com/spf13/cobra"
)

var seedOpts = seed.DevOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with fake race fans",
	Long: `Seed creates fake users, then drives follows, race logs, lists, likes
and comments between them through the action service, so counters,
activities and notifications stay consistent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, c, err := bootstrap()
		if err != nil {
			return err
		}
		defer c.Cleanup(cmd.Context())

		if !cfg.IsDevelopment() {
			out.Warning("Seeding a %s database", cfg.Environment)
		}
		out.Info("Seeding %d users...", seedOpts.Users)

		sum, err := seed.NewSeeder(c.Repositories().Profiles, c.Actions()).Run(cmd.Context(), seedOpts)
		if err != nil {
			return err
		}
		if sum.Degraded > 0 {
			out.Warning("%d actions finished degraded", sum.Degraded)
		}
		return out.Value("Seeded", sum)
	},
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Users, "users", seedOpts.Users, "Users to create")
	f.IntVar(&seedOpts.FollowsPerUser, "follows", seedOpts.FollowsPerUser, "Follow attempts per user")
	f.IntVar(&seedOpts.LogsPerUser, "logs", seedOpts.LogsPerUser, "Race logs per user")
	f.IntVar(&seedOpts.ListsPerUser, "lists", seedOpts.ListsPerUser, "Lists per user")
	f.IntVar(&seedOpts.LikesPerUser, "likes", seedOpts.LikesPerUser, "Like attempts per user")
	f.IntVar(&seedOpts.CommentsPerLog, "comments", seedOpts.CommentsPerLog, "Comments per race log")
	f.Int64Var(&seedOpts.Seed, "seed", 0, "Random seed for reproducible runs")
}
