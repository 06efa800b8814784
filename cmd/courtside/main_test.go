package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store/storetest"
)

func TestBuildReport(t *testing.T) {
	Convey("Given a loaded season", t, func() {
		db := storetest.Open(t)
		storetest.Season(t, db)
		engine := service.NewAggregationEngine(db)

		Convey("When the report is built", func() {
			report, err := buildReport(context.Background(), engine)
			So(err, ShouldBeNil)

			Convey("Then the season totals are present", func() {
				So(report.Totals.TotMatches, ShouldEqual, int64(4))
				So(report.Totals.TotPts, ShouldEqual, int64(931))
			})

			Convey("Then the leaders head every ranking", func() {
				So(report.Leaders, ShouldHaveLength, 7)
				So(report.Leaders[0].Stat, ShouldEqual, "ppg")
				So(report.Leaders[0].TeamID, ShouldEqual, "GSW")
				So(report.Leaders[0].Mean, ShouldEqual, 117.0)
			})

			Convey("Then the records carry the league mean", func() {
				So(report.Records[0].TeamID, ShouldEqual, "BOS")
				So(report.LeagueMeanWins, ShouldNotBeNil)
				So(*report.LeagueMeanWins, ShouldEqual, 1.0)
				So(report.Shooting, ShouldHaveLength, 4)
			})

			Convey("Then the text rendering lists every section", func() {
				var buf bytes.Buffer
				So(writeReport(&buf, report), ShouldBeNil)
				out := buf.String()
				for _, section := range []string{"SEASON", "LEAGUE MEANS", "LEADERS", "RECORDS", "SHOOTING"} {
					So(out, ShouldContainSubstring, section)
				}
			})
		})
	})

	Convey("Given an empty store", t, func() {
		db := storetest.Open(t)

		Convey("When the report is built", func() {
			report, err := buildReport(context.Background(), service.NewAggregationEngine(db))

			Convey("Then it has totals but no means", func() {
				So(err, ShouldBeNil)
				So(report.Means, ShouldBeNil)
				So(report.Totals.TotMatches, ShouldEqual, int64(0))
				So(report.LeagueMeanWins, ShouldBeNil)
			})
		})
	})
}

func TestRunCheck(t *testing.T) {
	Convey("Given a loaded season", t, func() {
		db := storetest.Open(t, storetest.WithHomeFlag())
		storetest.Season(t, db)

		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)

		Convey("Then the check passes and reports the counts", func() {
			So(runCheck(context.Background(), cmd, db), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "is_home column: true")
			So(out.String(), ShouldContainSubstring, "joined rows: 8")
			So(out.String(), ShouldContainSubstring, "cardinality: ok")
		})
	})
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"text", "text", "msg=hello"},
		{"json", "json", `"msg":"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.LogFormat = tt.format

			var buf bytes.Buffer
			newLogger(cfg, &buf).Info("hello")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("newLogger(%q) wrote %q, want it to contain %q", tt.format, buf.String(), tt.want)
			}
		})
	}
}

func TestReportJSON(t *testing.T) {
	report := &Report{Totals: &service.Totals{TotMatches: 2}, Records: []service.WinLoss{}, Leaders: []Leader{}}
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), `"means"`) {
		t.Errorf("empty means should be omitted: %s", data)
	}
}
