package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
	Resolver ResolverConfig `yaml:"resolver"`

	DefaultBirthYear int          `yaml:"default_birth_year"`
	AgeClasses       map[int]int  `yaml:"age_classes"`
	Districts        Districts    `yaml:"districts"`
	Tournaments      Tournaments  `yaml:"tournaments"`
	Output           OutputConfig `yaml:"output"`
	API              APIConfig    `yaml:"api"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text|json
}

// HTTPConfig holds the listen address of the read API.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// ResolverConfig tunes batch resolution.
type ResolverConfig struct {
	Workers int `yaml:"workers"`
	// AuditQueue routes fuzzy-match records through the in-process queue
	// instead of writing them synchronously.
	AuditQueue bool `yaml:"audit_queue"`
}

// OutputConfig holds the report destination.
type OutputConfig struct {
	Folder       string `yaml:"folder"`
	CSVDelimiter string `yaml:"csv_delimiter"`
}

// Delimiter returns the first rune of CSVDelimiter, or ';'.
func (o OutputConfig) Delimiter() rune {
	for _, r := range o.CSVDelimiter {
		return r
	}
	return ';'
}

// APIConfig holds the URL fragments of the results website.
type APIConfig struct {
	NuLigaBaseURL      string `yaml:"nuliga_base_url"`
	TournamentBaseURL  string `yaml:"tournament_base_url"`
	CompetitionBaseURL string `yaml:"competition_base_url"`
	FederationTTBW     string `yaml:"federation_ttbw"`
	FederationArge     string `yaml:"federation_arge"`
}

// District is one configured district.
type District struct {
	Name      string `yaml:"name"`
	Region    int    `yaml:"region"`
	ShortName string `yaml:"short_name"`
}

// Tournament is one configured ranking tournament. Federation is "arge" or
// "ttbw"; when empty, names starting with "BaWü" use "arge".
type Tournament struct {
	Name         string `yaml:"name"`
	TournamentID int    `yaml:"tournament_id"`
	Points       int    `yaml:"points"`
	Federation   string `yaml:"federation"`
}

// ResolvedFederation applies the naming rule when Federation is unset.
func (t Tournament) ResolvedFederation() string {
	if t.Federation != "" {
		return strings.ToLower(t.Federation)
	}
	if strings.HasPrefix(t.Name, "BaWü") {
		return "arge"
	}
	return "ttbw"
}

// Districts accepts either a mapping keyed by district name or a list.
type Districts []District

func (d *Districts) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []District
		if err := value.Decode(&list); err != nil {
			return err
		}
		*d = list
	case yaml.MappingNode:
		out := make(Districts, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			var entry District
			if err := value.Content[i+1].Decode(&entry); err != nil {
				return fmt.Errorf("district %q: %w", value.Content[i].Value, err)
			}
			entry.Name = value.Content[i].Value
			out = append(out, entry)
		}
		*d = out
	default:
		return fmt.Errorf("districts: expected mapping or sequence, got %v", value.Tag)
	}
	return nil
}

// Tournaments accepts either a mapping keyed by tournament name or a list.
// Mapping order is kept; it is the column order of the region reports.
type Tournaments []Tournament

func (t *Tournaments) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []Tournament
		if err := value.Decode(&list); err != nil {
			return err
		}
		*t = list
	case yaml.MappingNode:
		out := make(Tournaments, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			var entry Tournament
			if err := value.Content[i+1].Decode(&entry); err != nil {
				return fmt.Errorf("tournament %q: %w", value.Content[i].Value, err)
			}
			entry.Name = value.Content[i].Value
			out = append(out, entry)
		}
		*t = out
	default:
		return fmt.Errorf("tournaments: expected mapping or sequence, got %v", value.Tag)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Resolver: ResolverConfig{Workers: 8},

		DefaultBirthYear: 2014,
		AgeClasses: map[int]int{
			2006: 19, 2007: 19, 2008: 19, 2009: 19,
			2010: 15, 2011: 15,
			2012: 13, 2013: 13,
			2014: 11,
		},
		Districts: Districts{
			{Name: "Hochschwarzwald", Region: 1, ShortName: "HS"},
			{Name: "Ulm", Region: 2, ShortName: "UL"},
			{Name: "Donau", Region: 3, ShortName: "DO"},
			{Name: "Ludwigsburg", Region: 4, ShortName: "LB"},
			{Name: "Stuttgart", Region: 5, ShortName: "ST"},
		},
		Output: OutputConfig{Folder: "output", CSVDelimiter: ";"},
		API: APIConfig{
			NuLigaBaseURL:      "https://ttbw.click-tt.de/cgi-bin/WebObjects/nuLigaTTDE.woa/wa/",
			TournamentBaseURL:  "tournamentCalendarDetail?tournament=",
			CompetitionBaseURL: "tournamentCompetitionResults?",
			FederationTTBW:     "federation=TTBW",
			FederationArge:     "federation=ArGe+BaWue",
		},
	}
}

// LoadConfig loads the configuration from a YAML file. A missing or broken
// file degrades to the defaults; the returned warning says why.
func LoadConfig(filename string) (cfg *Config, warning error) {
	cfg = Default()

	data, err := os.ReadFile(filename)
	switch {
	case err != nil:
		warning = fmt.Errorf("config file %q not readable, using defaults: %w", filename, err)
	default:
		var fromFile Config
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			warning = fmt.Errorf("config file %q is invalid, using defaults: %w", filename, err)
		} else {
			cfg.merge(fromFile)
		}
	}

	cfg.applyEnv()
	return cfg, warning
}

// merge copies every section that is set in other.
func (c *Config) merge(other Config) {
	if other.Postgres.DSN != "" {
		c.Postgres = other.Postgres
	}
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}
	if other.HTTP.Addr != "" {
		c.HTTP = other.HTTP
	}
	if other.Resolver.Workers > 0 {
		c.Resolver.Workers = other.Resolver.Workers
	}
	c.Resolver.AuditQueue = other.Resolver.AuditQueue

	if other.DefaultBirthYear != 0 {
		c.DefaultBirthYear = other.DefaultBirthYear
	}
	if len(other.AgeClasses) > 0 {
		c.AgeClasses = other.AgeClasses
	}
	if len(other.Districts) > 0 {
		c.Districts = other.Districts
	}
	if len(other.Tournaments) > 0 {
		c.Tournaments = other.Tournaments
	}
	if other.Output.Folder != "" {
		c.Output.Folder = other.Output.Folder
	}
	if other.Output.CSVDelimiter != "" {
		c.Output.CSVDelimiter = other.Output.CSVDelimiter
	}

	api := other.API
	if api.NuLigaBaseURL != "" {
		c.API.NuLigaBaseURL = api.NuLigaBaseURL
	}
	if api.TournamentBaseURL != "" {
		c.API.TournamentBaseURL = api.TournamentBaseURL
	}
	if api.CompetitionBaseURL != "" {
		c.API.CompetitionBaseURL = api.CompetitionBaseURL
	}
	if api.FederationTTBW != "" {
		c.API.FederationTTBW = api.FederationTTBW
	}
	if api.FederationArge != "" {
		c.API.FederationArge = api.FederationArge
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("TTBW_OUTPUT_FOLDER"); v != "" {
		c.Output.Folder = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
}

// Regions lists the distinct configured regions in ascending order.
func (c *Config) Regions() []int {
	seen := make(map[int]bool)
	var regions []int
	for _, d := range c.Districts {
		if !seen[d.Region] {
			seen[d.Region] = true
			regions = append(regions, d.Region)
		}
	}
	sort.Ints(regions)
	return regions
}

// LogValue keeps the DSN out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("postgres_configured", c.Postgres.DSN != ""),
		slog.String("log_level", c.Logging.Level),
		slog.String("http_addr", c.HTTP.Addr),
		slog.Int("age_classes", len(c.AgeClasses)),
		slog.Int("districts", len(c.Districts)),
		slog.Int("tournaments", len(c.Tournaments)),
		slog.String("output_folder", c.Output.Folder),
	)
}
