package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
)

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the store schema and the game-log/box-score pairing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.cfg.QueryTimeout)
			defer cancel()

			db, err := a.openStore(ctx, nil)
			if err != nil {
				return err
			}
			defer db.Close()

			return runCheck(ctx, cmd, db)
		},
	}
}

func runCheck(ctx context.Context, cmd *cobra.Command, db *store.Database) error {
	out := cmd.OutOrStdout()
	info := db.Schema()
	fmt.Fprintf(out, "schema: ok (is_home column: %t)\n", info.HasHomeFlag)

	c, err := service.NewAggregationEngine(db).CheckCardinality(ctx)
	if c != nil {
		fmt.Fprintf(out, "match_info rows: %d\nmatch_stats rows: %d\njoined rows: %d\n",
			c.MatchInfoRows, c.MatchStatsRows, c.FactRows)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "cardinality: ok")
	return nil
}

func cacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage memoized results",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every memoized result of the configured refresh epoch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.RedisURL == "" {
				return fmt.Errorf("redis_url is not configured")
			}
			redisCache, err := cache.NewRedisCache(a.cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("connecting to redis: %w", err)
			}
			defer redisCache.Close()

			prefix := cache.NewMemo(redisCache, cache.WithEpoch(a.cfg.RefreshEpoch)).Prefix()
			n, err := redisCache.DeletePrefix(cmd.Context(), prefix)
			if err != nil {
				return fmt.Errorf("purging %s: %w", prefix, err)
			}
			a.logger.Info("purged memoized results", "prefix", prefix, "keys", n)
			return nil
		},
	})
	return cmd
}
