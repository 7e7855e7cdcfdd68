package parsers

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
	"golang.org/x/text/encoding/charmap"
)

// ParseParticipants reads an organizer participant export and indexes every
// <person> element by name and club number. Persons without a license or
// club number are skipped.
func ParseParticipants(data []byte) (rankingdomain.ParticipantIndex, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charsetReader

	index := make(rankingdomain.ParticipantIndex)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsers.ParseParticipants: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "person" {
			continue
		}

		attrs := make(map[string]string, len(start.Attr))
		for _, a := range start.Attr {
			attrs[a.Name.Local] = strings.TrimSpace(a.Value)
		}
		license, clubNumber := attrs["licence-nr"], attrs["club-nr"]
		if license == "" || clubNumber == "" {
			continue
		}
		index[rankingdomain.ParticipantKey(attrs["firstname"], attrs["lastname"], clubNumber)] = license
	}
	return index, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}
