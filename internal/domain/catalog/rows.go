package catalog

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// InfoRow is one line of the course information table.
// Numeric columns are kept as text: the exports carry blanks, "nan" and
// float renderings such as "4.0".
type InfoRow struct {
	Code    string `csv:"COD_CURSO"`
	Name    string `csv:"CURSO"`
	Hours   string `csv:"HRS_CURSO"`
	Credits string `csv:"CREDITOS"`
	Kind    string `csv:"TIPO_CURSO"`
	Level   string `csv:"NIVEL_CURSO"`
	Family  string `csv:"FAMILIA"`
}

// PrereqRow is one line of the curriculum table.
type PrereqRow struct {
	Code          string `csv:"CODIGO"`
	Prerequisites string `csv:"PREREQUISITO"`
}

// GraphRow is one line of the prerequisite graph analysis table.
type GraphRow struct {
	Code       string `csv:"CODIGO"`
	Dependents string `csv:"DEPENDIENTES"`
	Depth      string `csv:"PROFUNDIDAD_MAX"`
}

// NewCSVReader returns the reader used for every reference table.
func NewCSVReader(in io.Reader) gocsv.CSVReader {
	r := csv.NewReader(in)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	return r
}

// decode reads a whole table into rows, which must be a pointer to a slice.
func decode(in io.Reader, rows interface{}) error {
	return gocsv.UnmarshalCSV(NewCSVReader(in), rows)
}

// ParseCount converts a loosely formatted numeric cell to an int.
// Blank and non-numeric cells yield 0; fractions are truncated.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
