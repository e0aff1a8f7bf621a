package catalog

import (
	"encoding/csv"
	"errors"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Record is one row of the entity dataset.
type Record struct {
	Name         string
	Category     string
	Locale       string
	MediaLink    string
	Transcript   string
	Availability string
}

// Columns in fixed order: name, category, locale, mediaLink, transcript,
// availability. The last two are optional.
const minFields = 4

// Catalog loads the entity dataset lazily and serves it from memory.
// Load is single-flight: concurrent callers during the first read block
// until one load completes and then share the same immutable slice.
type Catalog struct {
	path   string
	logger *zerolog.Logger

	mu      sync.Mutex
	records []Record
	loaded  bool
}

func New(path string, logger *zerolog.Logger) *Catalog {
	return &Catalog{path: path, logger: logger}
}

// Load returns the cached records, reading the dataset file on first use.
// A missing or unreadable file yields an empty catalog, never an error;
// callers treat "no entities" as a valid degraded state. The failed read
// is not cached, so a later Load retries the file.
func (c *Catalog) Load() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.records
	}

	records, err := c.read()
	if err != nil {
		c.logger.Warn().Err(err).Str("path", c.path).Msg("entity catalog unavailable")

		return nil
	}

	c.records = records
	c.loaded = true
	c.logger.Info().Int("records", len(records)).Msg("entity catalog loaded")

	return c.records
}

// Invalidate drops the cache so the next Load re-reads the dataset.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = nil
	c.loaded = false
}

func (c *Catalog) read() ([]Record, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records []Record

	header := true

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			// Malformed rows are a data-quality filter, not an error.
			continue
		}

		if header {
			header = false
			continue
		}

		rec, ok := parseRow(row)
		if !ok {
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}

func parseRow(row []string) (Record, bool) {
	if len(row) < minFields {
		return Record{}, false
	}

	link := strings.TrimSpace(row[3])
	if !isAbsoluteURL(link) {
		return Record{}, false
	}

	rec := Record{
		Name:      strings.TrimSpace(row[0]),
		Category:  strings.TrimSpace(row[1]),
		Locale:    strings.TrimSpace(row[2]),
		MediaLink: link,
	}

	if len(row) > 4 {
		rec.Transcript = strings.TrimSpace(row[4])
	}

	if len(row) > 5 {
		rec.Availability = strings.TrimSpace(row[5])
	}

	return rec, true
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)

	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Names extracts record names in catalog order, skipping blanks.
func Names(records []Record) []string {
	names := make([]string, 0, len(records))

	for _, rec := range records {
		if rec.Name != "" {
			names = append(names, rec.Name)
		}
	}

	return names
}
