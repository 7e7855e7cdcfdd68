package nuliga

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/application/parsers"
	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
)

const (
	defaultTimeout = 30 * time.Second
	maxPageSize    = 8 << 20
)

// Endpoints are the URL fragments of the results website.
type Endpoints struct {
	BaseURL         string
	TournamentPath  string
	CompetitionPath string
	FederationTTBW  string
	FederationArge  string
}

// HTTPStatusError is returned for non-2xx responses.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// Client fetches competition lists and result pages.
type Client struct {
	http      *http.Client
	endpoints Endpoints
	logger    *slog.Logger
}

// NewClient uses a default client with a timeout when hc is nil.
func NewClient(hc *http.Client, endpoints Endpoints, logger *slog.Logger) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{http: hc, endpoints: endpoints, logger: logger}
}

func (c *Client) federation(t rankingdomain.Tournament) string {
	if t.Federation == rankingdomain.FederationArge {
		return c.endpoints.FederationArge
	}
	return c.endpoints.FederationTTBW
}

// CompetitionIndexURL is the overview page of tournament t.
func (c *Client) CompetitionIndexURL(t rankingdomain.Tournament) string {
	return c.endpoints.BaseURL + c.endpoints.TournamentPath + strconv.Itoa(t.ID) + "&" + c.federation(t)
}

// ResultsURL is the final placement page of one competition.
func (c *Client) ResultsURL(competitionID int) string {
	return c.endpoints.BaseURL + c.endpoints.CompetitionPath + c.endpoints.FederationArge + "&competition=" + strconv.Itoa(competitionID)
}

// Competitions lists the singles competitions of t.
func (c *Client) Competitions(ctx context.Context, t rankingdomain.Tournament) ([]rankingdomain.Competition, error) {
	body, err := c.get(ctx, c.CompetitionIndexURL(t))
	if err != nil {
		return nil, fmt.Errorf("nuliga.Competitions: %w", err)
	}
	competitions, err := parsers.ParseCompetitionIndex(body)
	if err != nil {
		return nil, fmt.Errorf("nuliga.Competitions: %w", err)
	}
	c.logger.InfoContext(ctx, "Loaded competitions",
		slog.String("tournament", t.Name),
		slog.Int("count", len(competitions)),
	)
	return competitions, nil
}

// Results returns the placements of one competition of t.
func (c *Client) Results(ctx context.Context, t rankingdomain.Tournament, comp rankingdomain.Competition) ([]rankingdomain.ResultFragment, error) {
	body, err := c.get(ctx, c.ResultsURL(comp.ID))
	if err != nil {
		return nil, fmt.Errorf("nuliga.Results: %w", err)
	}
	fragments, err := parsers.ParseResultsPage(body, t.Name, comp.Name)
	if err != nil {
		return nil, fmt.Errorf("nuliga.Results: %w", err)
	}
	return fragments, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
}
