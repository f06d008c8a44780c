package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/paddock/internal/adapters/http/api"
	service "github.com/okian/paddock/internal/app"
	"github.com/okian/paddock/internal/domain/aggregate"
	"github.com/okian/paddock/internal/domain/derive"
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

// mockDeps serves canned aggregates and records the parameters it saw.
type mockDeps struct {
	bounds  types.Bounds
	names   []string
	err     error
	layout  json.RawMessage
	started bool
}

func (m *mockDeps) WinsPerSeason(_ context.Context, b types.Bounds) ([]aggregate.SeasonWins, error) {
	m.bounds = b
	if m.err != nil {
		return nil, m.err
	}
	if _, err := b.Resolve(filter.YearRange{Min: 1984, Max: 1994}); err != nil {
		return nil, err
	}
	return []aggregate.SeasonWins{
		{Season: derive.SeasonOf(1990), Wins: 1},
		{Season: derive.SeasonOf(1991), Wins: 1},
	}, nil
}

func (m *mockDeps) PointsPerSeason(_ context.Context, b types.Bounds) ([]aggregate.SeasonPoints, error) {
	m.bounds = b
	return []aggregate.SeasonPoints{{Season: derive.SeasonOf(1988), Points: 94, Display: "94.0"}}, m.err
}

func (m *mockDeps) MonacoFinishes(_ context.Context, b types.Bounds) ([]aggregate.SeasonFinish, error) {
	m.bounds = b
	return []aggregate.SeasonFinish{}, m.err
}

func (m *mockDeps) Outcomes(context.Context) ([]aggregate.OutcomeCount, error) {
	return []aggregate.OutcomeCount{
		{Result: derive.OutcomeWin.String(), Count: 41},
		{Result: derive.OutcomePodium.String(), Count: 39},
		{Result: derive.OutcomeTopTen.String(), Count: 16},
		{Result: derive.OutcomeOther.String(), Count: 66},
	}, m.err
}

func (m *mockDeps) PolesByTrack(context.Context) ([]aggregate.TrackPoles, error) {
	return []aggregate.TrackPoles{{Track: "Monaco", Poles: 5}}, m.err
}

func (m *mockDeps) PolesVsWins(context.Context) ([]aggregate.YearPolesWins, error) {
	return []aggregate.YearPolesWins{{Year: 1988, Poles: 13, Wins: 8}}, m.err
}

func (m *mockDeps) PoleComparison(_ context.Context, names []string) ([]aggregate.DriverPoles, error) {
	m.names = names
	return []aggregate.DriverPoles{{DriverID: 102, Driver: "Ayrton Senna", Poles: 65}}, m.err
}

func (m *mockDeps) FatalitiesPerDecade(context.Context) ([]aggregate.DecadeFatalities, error) {
	return []aggregate.DecadeFatalities{{Decade: 1950, Fatalities: 15}}, m.err
}

func (m *mockDeps) FatalitiesBeforeAfter(context.Context) ([]aggregate.PeriodFatalities, error) {
	return []aggregate.PeriodFatalities{
		{Period: derive.BeforeLabel(1994), Fatalities: 6},
		{Period: derive.AfterLabel(1994), Fatalities: 4},
	}, m.err
}

func (m *mockDeps) Career(context.Context) (aggregate.Summary, error) {
	return aggregate.Summary{Races: 162, Wins: 41, Podiums: 80, Poles: 65, Points: 614}, m.err
}

func (m *mockDeps) Seasons(context.Context) (types.SeasonsInfo, error) {
	span := filter.YearRange{Min: 1984, Max: 1994}
	return types.SeasonsInfo{
		FocusDriver:   "Ayrton Senna",
		Span:          &span,
		MonacoDefault: filter.YearRange{Min: 1984, Max: 1993},
	}, m.err
}

func (m *mockDeps) Layout(context.Context) (json.RawMessage, error) {
	if m.layout == nil {
		return nil, service.ErrNoLayout
	}
	return m.layout, m.err
}

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": m.started}
}

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps).Register(context.Background(), mux)
	return mux
}

func get(mux http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestRangedAggregates(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When requesting wins for 1989-1991", func() {
			w := get(mux, "/aggregates/wins-per-season?from=1989&to=1991")

			Convey("Then the bounds reach the service and JSON comes back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(*deps.bounds.From, ShouldEqual, 1989)
				So(*deps.bounds.To, ShouldEqual, 1991)
				var rows []aggregate.SeasonWins
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Season.Label, ShouldEqual, "'90")
				So(w.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When bounds are omitted", func() {
			w := get(mux, "/aggregates/points-per-season")

			Convey("Then the service receives no bounds", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.bounds.From, ShouldBeNil)
				So(deps.bounds.To, ShouldBeNil)
			})
		})

		Convey("When from is after to", func() {
			w := get(mux, "/aggregates/wins-per-season?from=1991&to=1989")

			Convey("Then the request is rejected as an invalid range", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "invalid_range")
			})
		})

		Convey("When from is not an integer", func() {
			w := get(mux, "/aggregates/monaco-finishes?from=eighty")

			Convey("Then the request is rejected as bad", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When an empty range result is returned", func() {
			w := get(mux, "/aggregates/monaco-finishes?from=2000&to=2001")

			Convey("Then an empty JSON list is written", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})
	})
}

func TestSingleBoundOutsideCareer(t *testing.T) {
	Convey("Given a server over a 1988-1991 career", t, func() {
		svc := service.New(service.WithStore(records.New(records.Tables{
			Drivers: []model.Driver{{DriverID: 102, Forename: "Ayrton", Surname: "Senna"}},
			Races: []model.Race{
				{RaceID: 1, Year: 1988, CircuitID: 6, Name: "Monaco Grand Prix"},
				{RaceID: 2, Year: 1991, CircuitID: 6, Name: "Monaco Grand Prix"},
			},
			Results: []model.RaceResult{
				{RaceID: 1, DriverID: 102, Grid: 1, PositionOrder: 1, Points: 9},
				{RaceID: 2, DriverID: 102, Grid: 1, PositionOrder: 1, Points: 10},
			},
		})))
		So(svc.Start(context.Background()), ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)

		for _, target := range []string{
			"/aggregates/wins-per-season?from=2000",
			"/aggregates/points-per-season?to=1970",
			"/aggregates/monaco-finishes?to=1970",
		} {
			Convey("When requesting "+target, func() {
				w := get(mux, target)

				Convey("Then an empty table comes back", func() {
					So(w.Code, ShouldEqual, http.StatusOK)
					So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
				})
			})
		}

		Convey("When only from is given inside the career", func() {
			w := get(mux, "/aggregates/wins-per-season?from=1990")

			Convey("Then the rest of the career is counted", func() {
				var rows []aggregate.SeasonWins
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Season.Year, ShouldEqual, 1991)
			})
		})
	})
}

func TestFormats(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(&mockDeps{})

		Convey("When requesting outcomes as CSV", func() {
			w := get(mux, "/aggregates/outcomes?format=csv")

			Convey("Then a CSV attachment is written", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "outcome_breakdown.csv")
				So(w.Body.String(), ShouldStartWith, "Result,Count\nWins,41\n")
			})
		})

		Convey("When requesting the fatality split as XLSX", func() {
			w := get(mux, "/aggregates/fatalities-before-after?format=xlsx")

			Convey("Then a workbook is written", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
				So(err, ShouldBeNil)
				defer func() { _ = f.Close() }()
				rows, err := f.GetRows(aggregate.NameFatalitiesBeforeAfter)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				So(rows[1][0], ShouldEqual, "Before 1994")
			})
		})

		Convey("When requesting an unknown format", func() {
			w := get(mux, "/aggregates/poles-by-track?format=pdf")

			Convey("Then the request is not acceptable", func() {
				So(w.Code, ShouldEqual, http.StatusNotAcceptable)
				So(decodeError(w)["code"], ShouldEqual, "unsupported_format")
			})
		})

		Convey("When requesting the career as CSV", func() {
			w := get(mux, "/aggregates/career?format=csv")

			Convey("Then the summary table is written", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "162")
			})
		})
	})
}

func TestOtherAggregates(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("Then the pole comparison forwards repeated drivers", func() {
			w := get(mux, "/aggregates/pole-comparison?driver=Ayrton+Senna&driver=Alain+Prost&driver=")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.names, ShouldResemble, []string{"Ayrton Senna", "Alain Prost"})
		})

		Convey("Then the career is a single object", func() {
			w := get(mux, "/aggregates/career")
			var sum aggregate.Summary
			So(json.Unmarshal(w.Body.Bytes(), &sum), ShouldBeNil)
			So(sum.Wins, ShouldEqual, 41)
		})

		Convey("Then the remaining aggregates answer with JSON", func() {
			for _, path := range []string{
				"/aggregates/poles-vs-wins",
				"/aggregates/fatalities-per-decade",
				"/aggregates/poles-by-track",
			} {
				w := get(mux, path)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			}
		})

		Convey("Then non-GET methods are not found", func() {
			req := httptest.NewRequest(http.MethodPost, "/aggregates/outcomes", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then service failures become internal errors", func() {
			deps.err = errors.New("boom")
			w := get(mux, "/aggregates/outcomes")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w)["code"], ShouldEqual, "internal_error")
		})

		Convey("Then an unstarted service is unavailable", func() {
			deps.err = service.ErrNotStarted
			w := get(mux, "/aggregates/wins-per-season")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestSeasonsAndLayout(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When requesting the seasons", func() {
			w := get(mux, "/seasons")

			Convey("Then the focus span is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var info types.SeasonsInfo
				So(json.Unmarshal(w.Body.Bytes(), &info), ShouldBeNil)
				So(info.Span.Min, ShouldEqual, 1984)
				So(info.MonacoDefault.Max, ShouldEqual, 1993)
			})
		})

		Convey("When the layout is loaded", func() {
			deps.layout = json.RawMessage(`{"type":"FeatureCollection"}`)
			w := get(mux, "/circuits/monaco/layout")

			Convey("Then it is written verbatim", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/geo+json")
				So(w.Body.String(), ShouldEqual, `{"type":"FeatureCollection"}`)
			})
		})

		Convey("When no layout is loaded", func() {
			w := get(mux, "/circuits/monaco/layout")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(&mockDeps{started: true})

		Convey("Then /healthz exposes Prometheus metrics", func() {
			_ = get(mux, "/aggregates/outcomes")
			w := get(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "paddock_aggregator_http_requests_total")
		})

		Convey("Then /stats reports the service stats", func() {
			w := get(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given a request carrying an id", t, func() {
		mux := newMux(&mockDeps{})
		req := httptest.NewRequest(http.MethodGet, "/seasons", http.NoBody)
		req.Header.Set("X-Request-ID", "abc-123")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		Convey("Then the id is echoed", func() {
			So(w.Header().Get("X-Request-ID"), ShouldEqual, "abc-123")
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("strconv failure")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both kind and cause are matched", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: strconv failure")
		})

		Convey("Then NewKind and Wrap render the op", func() {
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: strconv failure")
		})
	})
}
