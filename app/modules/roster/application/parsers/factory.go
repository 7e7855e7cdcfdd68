package parsers

import (
	"fmt"
	"strings"
)

// Roster export columns.
const (
	ColFederation = "Verband"
	ColDistrict   = "Region"
	ColClub       = "VereinName"
	ColClubNumber = "VereinNr"
	ColSalutation = "Anrede"
	ColLastName   = "Nachname"
	ColFirstName  = "Vorname"
	ColBirthDate  = "Geburtsdatum"
	ColInternalID = "InterneNr"
)

// Row is one data row keyed by header name. Line is 1-based and counts the header.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the trimmed value of column, or "".
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Fields[column])
}

// ParsedRoster holds the rows of a roster export.
type ParsedRoster struct {
	Header []string
	Rows   []Row
}

// Parser reads a roster export.
type Parser interface {
	Parse(data []byte) (*ParsedRoster, error)
}

// ParserFactory picks a parser for a file name.
type ParserFactory interface {
	GetParser(fileName string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension.
type Factory struct{}

// NewFactory creates a new parser factory.
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns a parser for the given file name.
func (f *Factory) GetParser(fileName string) (Parser, error) {
	fileName = strings.ToLower(fileName)

	if strings.HasSuffix(fileName, ".csv") {
		return NewCSVParser(), nil
	}

	if strings.HasSuffix(fileName, ".xlsx") {
		return NewXLSXParser(), nil
	}

	return nil, fmt.Errorf("unsupported file type: %s (must be .csv or .xlsx)", fileName)
}

func buildRoster(records [][]string) (*ParsedRoster, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("roster has no header row")
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	out := &ParsedRoster{Header: header}
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		fields := make(map[string]string, len(header))
		for col, name := range header {
			if col < len(record) {
				fields[name] = record[col]
			}
		}
		out.Rows = append(out.Rows, Row{Line: i + 2, Fields: fields})
	}
	return out, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
