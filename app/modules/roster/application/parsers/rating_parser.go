package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var ratingLine = regexp.MustCompile(`^\d+\s*\t\d+\s*\t(.*?)\t(.*?)\t(\d+)`)

// Ratings maps RatingKey(name, club) to a QTTR value.
type Ratings map[string]int

// RatingKey strips all whitespace from name and club and concatenates them.
func RatingKey(name, club string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name+club)
}

// Lookup finds the rating of a roster player by first name, last name and club.
func (r Ratings) Lookup(first, last, club string) (int, bool) {
	v, ok := r[RatingKey(first+last, club)]
	return v, ok
}

// ParseRatings reads a tab-separated rating list with lines of the form
// rank, number, name, club, rating. Other lines are ignored.
func ParseRatings(data []byte) (Ratings, error) {
	decoded, err := DecodeLatin1(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rating file: %w", err)
	}

	ratings := make(Ratings)
	scanner := bufio.NewScanner(bytes.NewReader(decoded))
	for scanner.Scan() {
		m := ratingLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		value, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		ratings[RatingKey(m[1], m[2])] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rating file: %w", err)
	}
	return ratings, nil
}
