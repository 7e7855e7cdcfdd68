package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// CSVParser reads the federation's semicolon-separated export. Input that is
// not valid UTF-8 is decoded as Latin-1.
type CSVParser struct {
	Comma rune
}

// NewCSVParser creates a parser for semicolon-separated files.
func NewCSVParser() *CSVParser {
	return &CSVParser{Comma: ';'}
}

// Parse decodes data and returns the rows keyed by header.
func (p *CSVParser) Parse(data []byte) (*ParsedRoster, error) {
	decoded, err := DecodeLatin1(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = p.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return buildRoster(records)
}

// DecodeLatin1 returns data unchanged when it is valid UTF-8 and decodes it
// as ISO 8859-1 otherwise.
func DecodeLatin1(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(data)
}
