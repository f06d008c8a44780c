package records_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/records"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given source tables", t, func() {
		drivers := []model.Driver{{DriverID: 102, Forename: "Ayrton", Surname: "Senna"}}
		fatalities := []model.FatalityRecord{{Driver: "Ayrton Senna", Year: 1994, Fields: map[string]string{"Car": "Williams"}}}
		tables := records.Tables{
			Races:      []model.Race{{RaceID: 1, Year: 1994}},
			Results:    []model.RaceResult{{RaceID: 1, DriverID: 102}},
			Drivers:    drivers,
			Circuits:   []model.Circuit{{CircuitID: 6, Name: "Circuit de Monaco"}},
			Fatalities: fatalities,
			Layout:     json.RawMessage(`{"type":"FeatureCollection"}`),
			Reports:    []model.TableReport{{Table: "results", Read: 2, Loaded: 1, Skipped: 1, Reasons: map[string]int{"bad_number": 1}}},
		}

		store := records.New(tables)

		Convey("Then counts reflect every table", func() {
			So(store.Counts(), ShouldResemble, map[string]int{
				"races": 1, "results": 1, "drivers": 1, "qualifying": 0, "circuits": 1, "fatalities": 1,
			})
		})

		Convey("And mutating the inputs does not change the store", func() {
			drivers[0].Surname = "Changed"
			fatalities[0].Fields["Car"] = "Changed"
			So(store.Drivers()[0].Surname, ShouldEqual, "Senna")
			So(store.Fatalities()[0].Fields["Car"], ShouldEqual, "Williams")
		})

		Convey("And mutating returned tables does not change the store", func() {
			got := store.Drivers()
			got[0].Forename = "Changed"
			rep := store.Reports()
			rep[0].Reasons["bad_number"] = 99
			So(store.Drivers()[0].Forename, ShouldEqual, "Ayrton")
			So(store.Reports()[0].Reasons["bad_number"], ShouldEqual, 1)
		})

		Convey("And the layout is passed through untouched", func() {
			So(string(store.Layout()), ShouldEqual, `{"type":"FeatureCollection"}`)
		})

		Convey("And concurrent readers see the same data", func() {
			var wg sync.WaitGroup
			errs := make(chan int, 16)
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- len(store.Results())
				}()
			}
			wg.Wait()
			close(errs)
			for n := range errs {
				So(n, ShouldEqual, 1)
			}
		})
	})

	Convey("Given no tables", t, func() {
		store := records.New(records.Tables{})
		So(store.Results(), ShouldBeEmpty)
		So(store.Layout(), ShouldBeNil)
	})
}
