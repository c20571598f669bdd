package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

const defaultPageSize = 500

// ErrInvalidWindow is returned when the export window is empty or inverted.
var ErrInvalidWindow = errors.New("archive window must end after it starts")

// Source lists audit entries page by page.
type Source interface {
	List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLogEntry, error)
}

// Report describes one export run.
type Report struct {
	Key      string    `json:"key"`
	Location string    `json:"location,omitempty"`
	Entries  int       `json:"entries"`
	Since    time.Time `json:"since"`
	Until    time.Time `json:"until"`
}

// Exporter writes audit entries of a time window as gzipped JSON lines.
type Exporter struct {
	source   Source
	sink     Sink
	pageSize int
	now      func() time.Time
	logger   zerolog.Logger
}

// NewExporter creates an exporter reading from source and writing to sink.
func NewExporter(source Source, sink Sink, logger zerolog.Logger) *Exporter {
	return &Exporter{
		source:   source,
		sink:     sink,
		pageSize: defaultPageSize,
		now:      time.Now,
		logger:   logger.With().Str("component", "audit-exporter").Logger(),
	}
}

// PreviousDay returns the UTC day before now as [since, until).
func PreviousDay(now time.Time) (time.Time, time.Time) {
	until := now.UTC().Truncate(24 * time.Hour)
	return until.Add(-24 * time.Hour), until
}

// ObjectKey names the archive for the window [since, until).
func ObjectKey(since, until time.Time) string {
	const layout = "20060102T150405Z"
	return fmt.Sprintf("%s/order-audit-%s-%s.jsonl.gz",
		since.UTC().Format("2006/01/02"), since.UTC().Format(layout), until.UTC().Format(layout))
}

// Export archives every entry with since <= timestamp < until. A window
// reaching into the future is cut at the time the export starts, and pages
// are walked by cursor so entries appended meanwhile cannot shift them.
// Nothing is written when the window holds no entries.
func (e *Exporter) Export(ctx context.Context, since, until time.Time) (Report, error) {
	if now := e.now().UTC(); until.After(now) {
		until = now
	}
	report := Report{Key: ObjectKey(since, until), Since: since.UTC(), Until: until.UTC()}
	if !until.After(since) {
		return report, ErrInvalidWindow
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := json.NewEncoder(gz)

	var after *model.AuditCursor
	for {
		page, err := e.source.List(ctx, model.AuditFilter{
			Since: &since,
			Until: &until,
			After: after,
			Limit: e.pageSize,
		})
		if err != nil {
			return report, fmt.Errorf("failed to list audit entries: %w", err)
		}

		for i := range page {
			if err := enc.Encode(&page[i]); err != nil {
				return report, fmt.Errorf("failed to encode audit entry %s: %w", page[i].ID, err)
			}
		}
		report.Entries += len(page)

		if len(page) < e.pageSize {
			break
		}
		last := page[len(page)-1]
		after = &model.AuditCursor{Timestamp: last.Timestamp, ID: last.ID}
	}

	if err := gz.Close(); err != nil {
		return report, fmt.Errorf("failed to finish archive: %w", err)
	}

	if report.Entries == 0 {
		e.logger.Info().
			Time("since", since).
			Time("until", until).
			Msg("no audit entries to archive")
		return report, nil
	}

	location, err := e.sink.Put(ctx, report.Key, buf.Bytes())
	if err != nil {
		return report, fmt.Errorf("failed to store archive: %w", err)
	}
	report.Location = location
	metrics.ArchivedEntriesTotal.Add(float64(report.Entries))

	e.logger.Info().
		Str("location", location).
		Int("entries", report.Entries).
		Msg("audit entries archived")

	return report, nil
}
