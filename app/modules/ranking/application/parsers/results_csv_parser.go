package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
)

// ResultsCSVHeader is the column layout of offline result files.
var ResultsCSVHeader = []string{"Tournament", "Competition", "Position", "Nachname", "Vorname", "Verein", "VereinNr"}

// ParsedResults is the outcome of reading an offline results file.
type ParsedResults struct {
	Fragments []rankingdomain.ResultFragment
	// Skipped counts rows without a name, tournament or valid position.
	Skipped int
}

// ParseResultsCSV reads a semicolon-separated results file with a header row.
// Columns are located by header name so extra columns are tolerated.
func ParseResultsCSV(data []byte) (*ParsedResults, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("parsers.ParseResultsCSV: header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range ResultsCSVHeader[:6] {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("parsers.ParseResultsCSV: missing column %q", required)
		}
	}

	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := &ParsedResults{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsers.ParseResultsCSV: %w", err)
		}

		placement, err := strconv.Atoi(strings.TrimSuffix(get(row, "Position"), "."))
		f := rankingdomain.ResultFragment{
			Tournament:  get(row, "Tournament"),
			Competition: get(row, "Competition"),
			Placement:   placement,
			LastName:    get(row, "Nachname"),
			FirstName:   get(row, "Vorname"),
			Club:        get(row, "Verein"),
			ClubNumber:  get(row, "VereinNr"),
		}
		if err != nil || placement < 1 || f.Tournament == "" || f.FirstName == "" || f.LastName == "" {
			out.Skipped++
			continue
		}
		out.Fragments = append(out.Fragments, f)
	}
	return out, nil
}
