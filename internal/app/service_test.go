package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/paddock/internal/app"
	"github.com/okian/paddock/internal/domain/filter"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/records"
	"github.com/okian/paddock/internal/domain/types"
	"github.com/okian/paddock/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func intp(v int) *int { return &v }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func fatality(driver string, at time.Time) model.FatalityRecord {
	return model.FatalityRecord{Driver: driver, Date: at, Year: at.Year(), Decade: at.Year() / 10 * 10}
}

// fixtureTables is a compact career: six Senna starts between 1984 and 1994.
func fixtureTables() records.Tables {
	return records.Tables{
		Drivers: []model.Driver{
			{DriverID: 102, Forename: "Ayrton", Surname: "Senna"},
			{DriverID: 117, Forename: "Alain", Surname: "Prost"},
			{DriverID: 95, Forename: "Nigel", Surname: "Mansell"},
		},
		Races: []model.Race{
			{RaceID: 1, Year: 1984, CircuitID: 6, Name: "Monaco Grand Prix"},
			{RaceID: 2, Year: 1988, CircuitID: 6, Name: "Monaco Grand Prix"},
			{RaceID: 3, Year: 1988, CircuitID: 18, Name: "Brazilian Grand Prix"},
			{RaceID: 4, Year: 1990, CircuitID: 6, Name: "Monaco Grand Prix"},
			{RaceID: 5, Year: 1991, CircuitID: 7, Name: "United States Grand Prix"},
			{RaceID: 6, Year: 1994, CircuitID: 21, Name: "San Marino Grand Prix"},
		},
		Circuits: []model.Circuit{
			{CircuitID: 6, Name: "Circuit de Monaco"},
			{CircuitID: 7, Name: "Phoenix street circuit"},
			{CircuitID: 18, Name: "Autódromo José Carlos Pace"},
			{CircuitID: 21, Name: "Autodromo Enzo e Dino Ferrari"},
		},
		Results: []model.RaceResult{
			{RaceID: 1, DriverID: 102, Grid: 13, PositionOrder: 2, Points: 6},
			{RaceID: 2, DriverID: 102, Grid: 1, PositionOrder: 11, Points: 0},
			{RaceID: 3, DriverID: 102, Grid: 1, PositionOrder: 1, Points: 9},
			{RaceID: 4, DriverID: 102, Grid: 1, PositionOrder: 1, Points: 9},
			{RaceID: 5, DriverID: 102, Grid: 1, PositionOrder: 1, Points: 10},
			{RaceID: 6, DriverID: 102, Grid: 1, PositionOrder: 30, Points: 0},
			{RaceID: 2, DriverID: 117, Grid: 2, PositionOrder: 1, Points: 9},
			{RaceID: 5, DriverID: 117, Grid: 2, PositionOrder: 2, Points: 6},
			{RaceID: 4, DriverID: 95, Grid: 2, PositionOrder: 3, Points: 4},
		},
		Fatalities: []model.FatalityRecord{
			fatality("Riccardo Paletti", date(1982, time.June, 13)),
			fatality("Roland Ratzenberger", date(1994, time.April, 30)),
			fatality("Ayrton Senna", date(1994, time.May, 1)),
		},
		Layout: json.RawMessage(`{"type":"FeatureCollection","features":[]}`),
	}
}

func startedService(opts ...service.Option) *service.Service {
	svc := service.New(append([]service.Option{service.WithStore(records.New(fixtureTables()))}, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

type stubLoader struct {
	store *records.Store
	err   error
	calls int
}

func (l *stubLoader) Load(context.Context) (*records.Store, error) {
	l.calls++
	return l.store, l.err
}

func TestService_Start(t *testing.T) {
	Convey("Given a service with a loader", t, func() {
		ctx := context.Background()
		loader := &stubLoader{store: records.New(fixtureTables())}
		svc := service.New(service.WithLoader(loader))
		defer svc.Stop()

		Convey("When starting it twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the store is loaded once and the service is ready", func() {
				So(loader.calls, ShouldEqual, 1)
				So(svc.Ready(), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})
		})

		Convey("When stopping it", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then it is no longer ready", func() {
				So(svc.Ready(), ShouldBeFalse)
				_, err := svc.Outcomes(ctx)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})

	Convey("Given a loader that fails", t, func() {
		boom := errors.New("disk on fire")
		svc := service.New(service.WithLoader(&stubLoader{err: boom}))

		Convey("Then Start returns the wrapped error", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, boom), ShouldBeTrue)
			So(svc.Ready(), ShouldBeFalse)
		})
	})

	Convey("Given neither a store nor a loader", t, func() {
		err := service.New().Start(context.Background())
		So(errors.Is(err, service.ErrNoLoader), ShouldBeTrue)
	})
}

func TestService_SeasonAggregates(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService()

		Convey("When asking for wins without bounds", func() {
			wins, err := svc.WinsPerSeason(ctx, types.Bounds{})

			Convey("Then the whole career is covered", func() {
				So(err, ShouldBeNil)
				So(wins, ShouldHaveLength, 3)
				So(wins[0].Season.Label, ShouldEqual, "'88")
				So(wins[2].Season.Year, ShouldEqual, 1991)
			})
		})

		Convey("When asking for wins in 1989-1991", func() {
			wins, err := svc.WinsPerSeason(ctx, types.Bounds{From: intp(1989), To: intp(1991)})

			Convey("Then only 1990 and 1991 remain", func() {
				So(err, ShouldBeNil)
				So(wins, ShouldHaveLength, 2)
				So(wins[0].Season.Label, ShouldEqual, "'90")
				So(wins[0].Wins, ShouldEqual, 1)
				So(wins[1].Season.Label, ShouldEqual, "'91")
			})
		})

		Convey("When the bounds cross", func() {
			_, err := svc.PointsPerSeason(ctx, types.Bounds{From: intp(1991), To: intp(1988)})

			Convey("Then the range is rejected", func() {
				So(errors.Is(err, filter.ErrInvalidRange), ShouldBeTrue)
			})
		})

		Convey("When the range lies outside the career", func() {
			points, err := svc.PointsPerSeason(ctx, types.Bounds{From: intp(2000), To: intp(2010)})

			Convey("Then the table is empty", func() {
				So(err, ShouldBeNil)
				So(points, ShouldBeEmpty)
			})
		})

		Convey("When only a lower bound after the career is given", func() {
			wins, err := svc.WinsPerSeason(ctx, types.Bounds{From: intp(2000)})

			Convey("Then the table is empty", func() {
				So(err, ShouldBeNil)
				So(wins, ShouldBeEmpty)
			})
		})

		Convey("When only an upper bound before the career is given", func() {
			points, err := svc.PointsPerSeason(ctx, types.Bounds{To: intp(1970)})

			Convey("Then the table is empty", func() {
				So(err, ShouldBeNil)
				So(points, ShouldBeEmpty)
			})
		})

		Convey("When only an upper bound before the Monaco window is given", func() {
			finishes, err := svc.MonacoFinishes(ctx, types.Bounds{To: intp(1980)})

			Convey("Then the table is empty", func() {
				So(err, ShouldBeNil)
				So(finishes, ShouldBeEmpty)
			})
		})

		Convey("When asking for Monaco finishes with the default window", func() {
			finishes, err := svc.MonacoFinishes(ctx, types.Bounds{})

			Convey("Then the three Monaco starts up to 1993 are listed in order", func() {
				So(err, ShouldBeNil)
				So(finishes, ShouldHaveLength, 3)
				So(finishes[0].Season.Year, ShouldEqual, 1984)
				So(finishes[0].Position, ShouldEqual, 2)
				So(finishes[1].Position, ShouldEqual, 11)
				So(finishes[2].Position, ShouldEqual, 1)
			})
		})

		Convey("When narrowing Monaco finishes to 1990", func() {
			finishes, err := svc.MonacoFinishes(ctx, types.Bounds{From: intp(1990), To: intp(1990)})

			Convey("Then one finish remains", func() {
				So(err, ShouldBeNil)
				So(finishes, ShouldHaveLength, 1)
			})
		})
	})
}

func TestService_CareerAggregates(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService()

		Convey("Then the outcome breakdown covers every start", func() {
			outcomes, err := svc.Outcomes(ctx)
			So(err, ShouldBeNil)
			So(outcomes, ShouldHaveLength, 4)
			total := 0
			for _, o := range outcomes {
				total += o.Count
			}
			So(total, ShouldEqual, 6)
			So(outcomes[0].Count, ShouldEqual, 3)
			So(outcomes[3].Count, ShouldEqual, 2)
		})

		Convey("Then the career summary matches the fixture", func() {
			sum, err := svc.Career(ctx)
			So(err, ShouldBeNil)
			So(sum.Races, ShouldEqual, 6)
			So(sum.Wins, ShouldEqual, 3)
			So(sum.Podiums, ShouldEqual, 4)
			So(sum.Poles, ShouldEqual, 5)
			So(sum.Points, ShouldEqual, 34)
		})

		Convey("Then poles by track put Monaco first", func() {
			tracks, err := svc.PolesByTrack(ctx)
			So(err, ShouldBeNil)
			So(tracks[0].Track, ShouldEqual, "Monaco")
			So(tracks[0].Poles, ShouldEqual, 2)
		})

		Convey("Then poles and wins are merged per year", func() {
			years, err := svc.PolesVsWins(ctx)
			So(err, ShouldBeNil)
			So(years, ShouldHaveLength, 4)
			So(years[0].Year, ShouldEqual, 1988)
			So(years[0].Poles, ShouldEqual, 2)
			So(years[0].Wins, ShouldEqual, 1)
			So(years[3].Year, ShouldEqual, 1994)
			So(years[3].Wins, ShouldEqual, 0)
		})

		Convey("Then the pole comparison defaults to the configured drivers", func() {
			poles, err := svc.PoleComparison(ctx, nil)
			So(err, ShouldBeNil)
			So(poles, ShouldHaveLength, 1)
			So(poles[0].Driver, ShouldEqual, "Ayrton Senna")
			So(poles[0].Poles, ShouldEqual, 5)
		})

		Convey("Then a pole in a race missing from the races table still counts", func() {
			tables := fixtureTables()
			tables.Results = append(tables.Results, model.RaceResult{RaceID: 99, DriverID: 117, Grid: 1, PositionOrder: 1})
			orphan := service.New(service.WithStore(records.New(tables)))
			So(orphan.Start(ctx), ShouldBeNil)

			poles, err := orphan.PoleComparison(ctx, []string{"Alain Prost"})
			So(err, ShouldBeNil)
			So(poles, ShouldHaveLength, 1)
			So(poles[0].Poles, ShouldEqual, 1)
		})

		Convey("Then a different focus driver changes the career rows", func() {
			prost := startedService(service.WithFocusDriver("Alain Prost"))
			sum, err := prost.Career(ctx)
			So(err, ShouldBeNil)
			So(sum.Races, ShouldEqual, 2)
			So(sum.Wins, ShouldEqual, 1)
		})
	})
}

func TestService_Fatalities(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService()

		Convey("Then fatalities are counted per decade", func() {
			decades, err := svc.FatalitiesPerDecade(ctx)
			So(err, ShouldBeNil)
			So(decades, ShouldHaveLength, 2)
			So(decades[0].Decade, ShouldEqual, 1980)
			So(decades[1].Fatalities, ShouldEqual, 2)
		})

		Convey("Then fatalities are split at 1994", func() {
			split, err := svc.FatalitiesBeforeAfter(ctx)
			So(err, ShouldBeNil)
			So(split[0].Period, ShouldEqual, "Before 1994")
			So(split[0].Fatalities, ShouldEqual, 1)
			So(split[1].Period, ShouldEqual, "1994 and After")
			So(split[1].Fatalities, ShouldEqual, 2)
		})

		Convey("Then a custom threshold moves the split", func() {
			split, err := startedService(service.WithFatalityThreshold(1980)).FatalitiesBeforeAfter(ctx)
			So(err, ShouldBeNil)
			So(split[0].Fatalities, ShouldEqual, 0)
		})
	})
}

func TestService_SeasonsAndLayout(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(service.WithComparisonDrivers(
			[]string{"Ayrton Senna", "Alain Prost", "Nigel Mansell", "Lewis Hamilton"},
			[]string{"Ayrton Senna", "Alain Prost"},
		))

		Convey("Then seasons span the focus career", func() {
			info, err := svc.Seasons(ctx)
			So(err, ShouldBeNil)
			So(info.Span.Min, ShouldEqual, 1984)
			So(info.Span.Max, ShouldEqual, 1994)
			So(info.Seasons, ShouldHaveLength, 11)
			So(info.Seasons[0].Label, ShouldEqual, "'84")
			So(info.MonacoDefault, ShouldResemble, filter.YearRange{Min: 1984, Max: 1993})
			So(info.ComparisonOptions, ShouldHaveLength, 4)
			So(info.DefaultComparison, ShouldResemble, []string{"Ayrton Senna", "Alain Prost"})
		})

		Convey("Then the default driver lists are offered without options", func() {
			info, err := startedService().Seasons(ctx)
			So(err, ShouldBeNil)
			So(info.ComparisonOptions, ShouldResemble, []string{
				"Ayrton Senna", "Michael Schumacher", "Lewis Hamilton", "Sebastian Vettel",
				"Alain Prost", "Niki Lauda", "Max Verstappen",
			})
			So(info.DefaultComparison, ShouldResemble, []string{"Ayrton Senna", "Michael Schumacher", "Lewis Hamilton"})
		})

		Convey("Then the layout is passed through", func() {
			layout, err := svc.Layout(ctx)
			So(err, ShouldBeNil)
			So(string(layout), ShouldContainSubstring, "FeatureCollection")
		})

		Convey("Then a missing layout is reported", func() {
			tables := fixtureTables()
			tables.Layout = nil
			bare := service.New(service.WithStore(records.New(tables)))
			So(bare.Start(ctx), ShouldBeNil)
			_, err := bare.Layout(ctx)
			So(errors.Is(err, service.ErrNoLayout), ShouldBeTrue)
		})

		Convey("Then stats list table sizes", func() {
			stats := svc.GetStats()
			So(stats["tables"].(map[string]int)["results"], ShouldEqual, 9)
		})
	})
}

func TestService_Idempotence(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService()

		Convey("Then recomputing an aggregate yields identical JSON", func() {
			a, err := svc.PointsPerSeason(ctx, types.Bounds{})
			So(err, ShouldBeNil)
			b, err := svc.PointsPerSeason(ctx, types.Bounds{})
			So(err, ShouldBeNil)
			ja, _ := json.Marshal(a)
			jb, _ := json.Marshal(b)
			So(string(ja), ShouldEqual, string(jb))
		})
	})
}
