package derive_test

import (
	"testing"
	"time"

	"github.com/okian/paddock/internal/domain/derive"
	"github.com/okian/paddock/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeasonLabel(t *testing.T) {
	Convey("Given season years", t, func() {
		Convey("Then labels use an apostrophe and the last two digits", func() {
			So(derive.SeasonLabel(1988), ShouldEqual, "'88")
			So(derive.SeasonLabel(1990), ShouldEqual, "'90")
			So(derive.SeasonLabel(2005), ShouldEqual, "'05")
			So(derive.SeasonLabel(2000), ShouldEqual, "'00")
		})

		Convey("And SeasonOf keeps the integer year next to the label", func() {
			So(derive.SeasonOf(1991), ShouldResemble, model.Season{Year: 1991, Label: "'91"})
		})
	})
}

func TestDecade(t *testing.T) {
	Convey("Given years within and on decade boundaries", t, func() {
		So(derive.Decade(1994), ShouldEqual, 1990)
		So(derive.Decade(1990), ShouldEqual, 1990)
		So(derive.Decade(1959), ShouldEqual, 1950)
		So(derive.Decade(2014), ShouldEqual, 2010)
	})
}

func TestClassify(t *testing.T) {
	Convey("Given finishing positions", t, func() {
		Convey("Then each position falls into exactly one class", func() {
			So(derive.Classify(1), ShouldEqual, derive.OutcomeWin)
			So(derive.Classify(2), ShouldEqual, derive.OutcomePodium)
			So(derive.Classify(3), ShouldEqual, derive.OutcomePodium)
			So(derive.Classify(4), ShouldEqual, derive.OutcomeTopTen)
			So(derive.Classify(10), ShouldEqual, derive.OutcomeTopTen)
			So(derive.Classify(11), ShouldEqual, derive.OutcomeOther)
			So(derive.Classify(33), ShouldEqual, derive.OutcomeOther)
			So(derive.Classify(0), ShouldEqual, derive.OutcomeOther)
		})

		Convey("And classes have fixed display labels", func() {
			labels := make([]string, 0, len(derive.Outcomes))
			for _, o := range derive.Outcomes {
				labels = append(labels, o.String())
			}
			So(labels, ShouldResemble, []string{"Wins", "2nd/3rd (Podiums)", "4th–10th", "Other / DNF"})
		})
	})
}

func TestPeriod(t *testing.T) {
	Convey("Given the 1994 threshold", t, func() {
		So(derive.Period(1993, 1994), ShouldEqual, "Before 1994")
		So(derive.Period(1994, 1994), ShouldEqual, "1994 and After")
		So(derive.Period(2014, 1994), ShouldEqual, "1994 and After")
	})
}

func TestStripGrandPrix(t *testing.T) {
	Convey("Given event names", t, func() {
		So(derive.StripGrandPrix("Monaco Grand Prix"), ShouldEqual, "Monaco")
		So(derive.StripGrandPrix("San Marino Grand Prix"), ShouldEqual, "San Marino")
		So(derive.StripGrandPrix("Indianapolis 500"), ShouldEqual, "Indianapolis 500")
	})
}

func TestReconcilePolesWins(t *testing.T) {
	Convey("Given poles and wins on overlapping years", t, func() {
		poles := map[int]int{1988: 13, 1985: 7}
		wins := map[int]int{1988: 8, 1987: 2}

		out := derive.ReconcilePolesWins(poles, wins)

		Convey("Then every year appears once with the missing side zero-filled", func() {
			So(out, ShouldResemble, []derive.YearTally{
				{Year: 1985, Poles: 7, Wins: 0},
				{Year: 1987, Poles: 0, Wins: 2},
				{Year: 1988, Poles: 13, Wins: 8},
			})
		})
	})

	Convey("Given no data", t, func() {
		So(derive.ReconcilePolesWins(nil, nil), ShouldBeEmpty)
	})
}

func TestParseAccidentDate(t *testing.T) {
	Convey("Given raw accident date cells", t, func() {
		Convey("Then day-first dates parse", func() {
			d, ok := derive.ParseAccidentDate("1 May 1994")
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, time.Date(1994, time.May, 1, 0, 0, 0, 0, time.UTC))
		})

		Convey("And footnote markers are ignored", func() {
			d, ok := derive.ParseAccidentDate("5 October 2014[a]")
			So(ok, ShouldBeTrue)
			So(d.Year(), ShouldEqual, 2014)
		})

		Convey("And month-first and ISO dates parse", func() {
			_, ok := derive.ParseAccidentDate("August 3, 1958")
			So(ok, ShouldBeTrue)
			d, ok := derive.ParseAccidentDate("1977-03-05")
			So(ok, ShouldBeTrue)
			So(d.Month(), ShouldEqual, time.March)
		})

		Convey("And unparseable text is rejected", func() {
			_, ok := derive.ParseAccidentDate("unknown")
			So(ok, ShouldBeFalse)
			_, ok = derive.ParseAccidentDate("")
			So(ok, ShouldBeFalse)
		})
	})
}
