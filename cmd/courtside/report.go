package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/service"
)

// Report is the season summary
type Report struct {
	Means          *service.MeanValues     `json:"means,omitempty"`
	Totals         *service.Totals         `json:"totals"`
	Records        []service.WinLoss       `json:"records"`
	LeagueMeanWins *float64                `json:"league_mean_wins,omitempty"`
	Leaders        []Leader                `json:"leaders"`
	Shooting       []service.ShootingSplit `json:"shooting"`
}

// Leader is the top team of one per-game ranking
type Leader struct {
	Stat     string  `json:"stat"`
	TeamID   string  `json:"team_id"`
	TeamName string  `json:"team_name"`
	Value    float64 `json:"value"`
	Mean     float64 `json:"mean"`
}

func reportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the season summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 4*a.cfg.QueryTimeout)
			defer cancel()

			db, err := a.openStore(ctx, nil)
			if err != nil {
				return err
			}
			defer db.Close()

			report, err := buildReport(ctx, service.NewAggregationEngine(db))
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return writeReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

// buildReport gathers the summary. An empty store yields a report without means.
func buildReport(ctx context.Context, engine *service.AggregationEngine) (*Report, error) {
	report := &Report{}

	means, err := engine.MeanValues(ctx)
	switch {
	case err == nil:
		report.Means = means
	case errors.Is(err, service.ErrNoData):
	default:
		return nil, err
	}

	if report.Totals, err = engine.TotalStats(ctx); err != nil {
		return nil, err
	}

	if report.Records, err = engine.WinsLosses(ctx); err != nil {
		return nil, err
	}
	if mean, ok := service.LeagueWinMean(report.Records); ok {
		report.LeagueMeanWins = &mean
	}

	stats, err := engine.TeamStats(ctx)
	if err != nil {
		return nil, err
	}
	report.Leaders = make([]Leader, 0, 7)
	for _, series := range stats.Series() {
		if len(series.Teams) == 0 {
			continue
		}
		top := series.Teams[0]
		report.Leaders = append(report.Leaders, Leader{
			Stat:     series.Stat,
			TeamID:   top.TeamID,
			TeamName: top.TeamName,
			Value:    top.Value,
			Mean:     series.Mean,
		})
	}

	if report.Shooting, err = engine.ShootingSplits(ctx); err != nil {
		return nil, err
	}

	return report, nil
}

func writeReport(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "SEASON")
	fmt.Fprintf(tw, "matches\t%d\n", r.Totals.TotMatches)
	fmt.Fprintf(tw, "game dates\t%d\n", r.Totals.TotDates)
	fmt.Fprintf(tw, "minutes\t%d\n", r.Totals.TotMinutes)
	fmt.Fprintf(tw, "points\t%d\n", r.Totals.TotPts)
	fmt.Fprintf(tw, "field goals made\t%d\n", r.Totals.TotFGM)

	if r.Means != nil {
		fmt.Fprintln(tw, "\nLEAGUE MEANS")
		fmt.Fprintf(tw, "pts\tast\treb\tstl\tblk\ttov\tpf\n")
		fmt.Fprintf(tw, "%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			r.Means.AvgPts, r.Means.AvgAst, r.Means.AvgReb, r.Means.AvgStl,
			r.Means.AvgBlk, r.Means.AvgTov, r.Means.AvgPf)
	}

	if len(r.Leaders) > 0 {
		fmt.Fprintln(tw, "\nLEADERS")
		fmt.Fprintln(tw, "stat\tteam\tvalue\tmean")
		for _, l := range r.Leaders {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\n", l.Stat, l.TeamName, l.Value, l.Mean)
		}
	}

	if len(r.Records) > 0 {
		fmt.Fprintln(tw, "\nRECORDS")
		fmt.Fprintln(tw, "team\tW\tL")
		for _, rec := range r.Records {
			fmt.Fprintf(tw, "%s\t%d\t%d\n", rec.TeamName, rec.Wins, rec.Losses)
		}
		if r.LeagueMeanWins != nil {
			fmt.Fprintf(tw, "league mean\t%.2f\t\n", *r.LeagueMeanWins)
		}
	}

	if len(r.Shooting) > 0 {
		fmt.Fprintln(tw, "\nSHOOTING")
		fmt.Fprintln(tw, "team\tFG%\t3P%\tFT%")
		for _, sp := range r.Shooting {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", sp.TeamName, pct(sp.FGPct), pct(sp.TPPct), pct(sp.FTPct))
		}
	}

	return tw.Flush()
}

func pct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v*100)
}
