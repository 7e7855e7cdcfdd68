package parsers

import (
	"bytes"
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
	"github.com/PuerkitoBio/goquery"
)

var (
	clubWithNumber  = regexp.MustCompile(`^(.*?)\s*\((\d+)\)$`)
	singlesHeading  = regexp.MustCompile(`^(\S+ \d+) Einzel$`)
	competitionHref = regexp.MustCompile(`competition=(\d+)`)
)

// ParseResultsPage extracts final placements from a competition result page.
// Rows look like <td>3 </td><td>Muster, Max</td><td>TTC Alpha (1234)</td>.
// Rows that do not fit are ignored.
func ParseResultsPage(html []byte, tournament, competition string) ([]rankingdomain.ResultFragment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsers.ParseResultsPage: %w", err)
	}

	var fragments []rankingdomain.ResultFragment
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 3 {
			return
		}

		placement, err := strconv.Atoi(strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil || placement < 1 {
			return
		}

		last, first, ok := strings.Cut(collapse(cells.Eq(1).Text()), ", ")
		if !ok || strings.TrimSpace(first) == "" || strings.TrimSpace(last) == "" {
			return
		}

		club, clubNumber := splitClub(collapse(cells.Eq(2).Text()))
		fragments = append(fragments, rankingdomain.ResultFragment{
			FirstName:   strings.TrimSpace(first),
			LastName:    strings.TrimSpace(last),
			Club:        club,
			ClubNumber:  clubNumber,
			Tournament:  tournament,
			Competition: competition,
			Placement:   placement,
		})
	})
	return fragments, nil
}

// ParseCompetitionIndex lists the singles competitions of a tournament that
// have a published participant list, ordered by competition ID.
func ParseCompetitionIndex(html []byte) ([]rankingdomain.Competition, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsers.ParseCompetitionIndex: %w", err)
	}

	seen := make(map[int]struct{})
	var competitions []rankingdomain.Competition
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		m := singlesHeading.FindStringSubmatch(collapse(row.Find("td b").First().Text()))
		if m == nil {
			return
		}

		active := false
		row.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
			if strings.TrimSpace(td.Text()) == "ja" {
				active = true
			}
		})
		if !active {
			return
		}

		row.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.TrimSpace(a.Text()) != "Teilnehmer" {
				return true
			}
			href, _ := a.Attr("href")
			idMatch := competitionHref.FindStringSubmatch(href)
			if idMatch == nil {
				return true
			}
			id, err := strconv.Atoi(idMatch[1])
			if err != nil {
				return true
			}
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				competitions = append(competitions, rankingdomain.Competition{ID: id, Name: m[1]})
			}
			return false
		})
	})

	slices.SortFunc(competitions, func(a, b rankingdomain.Competition) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return competitions, nil
}

func splitClub(text string) (club, number string) {
	if m := clubWithNumber.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	return strings.TrimSpace(text), ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
