package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/paddock/internal/domain/model"
)

// Source table names, matching the Kaggle file names without extension.
const (
	TableRaces      = "races"
	TableResults    = "results"
	TableDrivers    = "drivers"
	TableQualifying = "qualifying"
	TableCircuits   = "circuits"
	TableFatalities = "fatalities"
)

// csvRecord gives by-name access to one CSV record.
type csvRecord struct {
	cols   map[string]int
	fields []string
}

func (r csvRecord) str(name string) string {
	return strings.TrimSpace(r.fields[r.cols[name]])
}

func (r csvRecord) int(name string) (int, error) {
	return strconv.Atoi(r.str(name))
}

func (r csvRecord) float(name string) (float64, error) {
	return strconv.ParseFloat(r.str(name), 64)
}

// readCSV streams rows of a CSV table with a header line. Each row is handed
// to build; rows with the wrong field count, quoting problems or a build
// error are skipped and counted on the returned report. Only I/O errors and
// a header lacking a required column abort the read.
func readCSV(r io.Reader, table string, required []string, build func(csvRecord) error) (model.TableReport, error) {
	report := model.TableReport{Table: table}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return report, fmt.Errorf("%w: %s header: %w", ErrReadTable, table, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return report, fmt.Errorf("%w: %s.%s", ErrMissingColumn, table, name)
		}
	}

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Read++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.Skip(ReasonMalformed)
				continue
			}
			return report, fmt.Errorf("%w: %s: %w", ErrReadTable, table, err)
		}
		if len(fields) != len(header) {
			report.Skip(ReasonColumnCount)
			continue
		}
		if err := build(csvRecord{cols: cols, fields: fields}); err != nil {
			report.Skip(ReasonBadNumber)
			continue
		}
		report.Loaded++
	}
	return report, nil
}

// ReadRaces parses races.csv.
func ReadRaces(r io.Reader) ([]model.Race, model.TableReport, error) {
	var out []model.Race
	rep, err := readCSV(r, TableRaces, []string{"raceId", "year", "circuitId", "name"}, func(rec csvRecord) error {
		id, err := rec.int("raceId")
		if err != nil {
			return err
		}
		year, err := rec.int("year")
		if err != nil {
			return err
		}
		circuit, err := rec.int("circuitId")
		if err != nil {
			return err
		}
		out = append(out, model.Race{RaceID: id, Year: year, CircuitID: circuit, Name: rec.str("name")})
		return nil
	})
	return out, rep, err
}

// ReadResults parses results.csv.
func ReadResults(r io.Reader) ([]model.RaceResult, model.TableReport, error) {
	var out []model.RaceResult
	required := []string{"raceId", "driverId", "grid", "positionOrder", "points"}
	rep, err := readCSV(r, TableResults, required, func(rec csvRecord) error {
		var res model.RaceResult
		var err error
		if res.RaceID, err = rec.int("raceId"); err != nil {
			return err
		}
		if res.DriverID, err = rec.int("driverId"); err != nil {
			return err
		}
		if res.Grid, err = rec.int("grid"); err != nil {
			return err
		}
		if res.PositionOrder, err = rec.int("positionOrder"); err != nil {
			return err
		}
		if res.Points, err = rec.float("points"); err != nil {
			return err
		}
		out = append(out, res)
		return nil
	})
	return out, rep, err
}

// ReadDrivers parses drivers.csv.
func ReadDrivers(r io.Reader) ([]model.Driver, model.TableReport, error) {
	var out []model.Driver
	rep, err := readCSV(r, TableDrivers, []string{"driverId", "forename", "surname"}, func(rec csvRecord) error {
		id, err := rec.int("driverId")
		if err != nil {
			return err
		}
		out = append(out, model.Driver{DriverID: id, Forename: rec.str("forename"), Surname: rec.str("surname")})
		return nil
	})
	return out, rep, err
}

// ReadQualifying parses qualifying.csv.
func ReadQualifying(r io.Reader) ([]model.Qualifying, model.TableReport, error) {
	var out []model.Qualifying
	required := []string{"qualifyId", "raceId", "driverId", "position"}
	rep, err := readCSV(r, TableQualifying, required, func(rec csvRecord) error {
		var q model.Qualifying
		var err error
		if q.QualifyID, err = rec.int("qualifyId"); err != nil {
			return err
		}
		if q.RaceID, err = rec.int("raceId"); err != nil {
			return err
		}
		if q.DriverID, err = rec.int("driverId"); err != nil {
			return err
		}
		if q.Position, err = rec.int("position"); err != nil {
			return err
		}
		out = append(out, q)
		return nil
	})
	return out, rep, err
}

// ReadCircuits parses circuits.csv.
func ReadCircuits(r io.Reader) ([]model.Circuit, model.TableReport, error) {
	var out []model.Circuit
	rep, err := readCSV(r, TableCircuits, []string{"circuitId", "name"}, func(rec csvRecord) error {
		id, err := rec.int("circuitId")
		if err != nil {
			return err
		}
		out = append(out, model.Circuit{CircuitID: id, Name: rec.str("name")})
		return nil
	})
	return out, rep, err
}
