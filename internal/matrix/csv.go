package matrix

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/pkg/compare"
)

// Header is the CSV column contract, legacy names included.
var Header = []string{
	"Simulation_Id",
	"Biooil_Id",
	"Condition_Id",
	"Aromatics_wt",
	"Acids_wt",
	"Alcohols_wt",
	"Furans_wt",
	"Phenols_wt",
	"AldehydeKetone_wt",
	"Temperature_C",
	"Pressure_bar",
	"SteamToCarbon",
	"BiooilFeedRate_kgh",
	"SteamFeedRate_kgh",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Write serializes the matrix as CSV.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.CaseID, 10),
			strconv.FormatInt(r.BiooilID, 10),
			strconv.Itoa(r.ConditionID),
			formatFloat(r.AromaticsWt),
			formatFloat(r.AcidsWt),
			formatFloat(r.AlcoholsWt),
			formatFloat(r.FuransWt),
			formatFloat(r.PhenolsWt),
			formatFloat(r.AldehydeKetoneWt),
			formatFloat(r.TemperatureC),
			formatFloat(r.PressureBar),
			formatFloat(r.SteamToCarbon),
			formatFloat(r.FeedRateKgh),
			formatFloat(r.SteamRateKgh),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the matrix to path.
func WriteFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read deserializes a matrix, verifying the header and every field.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if err := compare.StringSlice(header, Header); err != nil {
		return nil, errors.Wrapf(err, "unexpected header %v", header)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		row, err := parseRecord(record)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadFile reads the matrix at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

func parseRecord(record []string) (Row, error) {
	var (
		row  Row
		err  error
		errs = func(e error, column string) error {
			return errors.Wrapf(e, "column %s", column)
		}
	)

	if row.CaseID, err = strconv.ParseInt(record[0], 10, 64); err != nil {
		return row, errs(err, Header[0])
	}
	if row.BiooilID, err = strconv.ParseInt(record[1], 10, 64); err != nil {
		return row, errs(err, Header[1])
	}
	if row.ConditionID, err = strconv.Atoi(record[2]); err != nil {
		return row, errs(err, Header[2])
	}

	floats := []*float64{
		&row.AromaticsWt,
		&row.AcidsWt,
		&row.AlcoholsWt,
		&row.FuransWt,
		&row.PhenolsWt,
		&row.AldehydeKetoneWt,
		&row.TemperatureC,
		&row.PressureBar,
		&row.SteamToCarbon,
		&row.FeedRateKgh,
		&row.SteamRateKgh,
	}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(record[i+3], 64); err != nil {
			return row, errs(err, Header[i+3])
		}
	}

	return row, nil
}
