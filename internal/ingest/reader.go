package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tmotif/internal/graph"
)

// DateLayout is the timestamp layout of the CERT insider threat logs.
// Dates in this layout are read as UTC and stored as Unix milliseconds.
const DateLayout = "01/02/2006 15:04:05"

// AttachKind is the edge kind of synthesised attachment edges.
const AttachKind = "Attach"

// Column names.
const (
	colDate             = "date"
	colUser             = "user"
	colHost             = "host"
	colEmailActivity    = "email_activity"
	colEmailContent     = "email_content"
	colEmailAttachments = "email_attachments"
	colFileActivity     = "file_activity"
	colFileFilename     = "file_filename"
	colDeviceActivity   = "device_activity"
	colHTTPActivity     = "http_activity"
	colHTTPURL          = "http_url"
	colLogonActivity    = "logon_activity"
)

// Stats summarises one ingestion.
type Stats struct {
	Rows    int // data rows read
	Edges   int // edges emitted, attachments included
	Skipped int // rows that produced no edge
	Emails  int // distinct emails
}

// Reader converts activity-log CSV into event graphs.
//
// A Reader keeps the email identity table of one ingestion and must not be
// reused or shared between goroutines.
type Reader struct {
	logger *slog.Logger

	columns map[string]int
	emails  map[string]string
	edges   []graph.Edge
	stats   Stats
}

// NewReader creates a Reader. A nil logger discards diagnostics.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{
		logger: logger,
		emails: make(map[string]string),
	}
}

// ReadFile ingests the CSV file at path.
func (r *Reader) ReadFile(ctx context.Context, path string) (*graph.EventGraph, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return r.Read(ctx, f)
}

// Read ingests CSV from in and builds the resulting graph.
//
// Read fails only when the header is unusable, the input cannot be read or
// ctx is cancelled. Malformed rows are skipped and counted in Stats.Skipped.
func (r *Reader) Read(ctx context.Context, in io.Reader) (*graph.EventGraph, Stats, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, r.stats, &graph.EmptyInputError{What: "activity log"}
		}
		return nil, r.stats, fmt.Errorf("reading header: %w", err)
	}
	if err := r.indexHeader(header); err != nil {
		return nil, r.stats, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, r.stats, err
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			r.stats.Rows++
			r.skip(perr.Line, perr.Err.Error())
			continue
		}
		if err != nil {
			return nil, r.stats, fmt.Errorf("reading activity log: %w", err)
		}

		r.stats.Rows++
		line, _ := cr.FieldPos(0)
		if reason := r.parseRow(record); reason != "" {
			r.skip(line, reason)
		}
	}

	g, err := graph.Build(r.edges)
	if err != nil {
		return nil, r.stats, fmt.Errorf("building graph: %w", err)
	}

	r.stats.Emails = len(r.emails)
	r.logger.Debug("ingest finished",
		"rows", r.stats.Rows,
		"edges", r.stats.Edges,
		"skipped", r.stats.Skipped,
		"emails", r.stats.Emails,
	)
	return g, r.stats, nil
}

func (r *Reader) indexHeader(header []string) error {
	r.columns = make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := r.columns[name]; !dup {
			r.columns[name] = i
		}
	}
	if _, ok := r.columns[colDate]; !ok {
		return fmt.Errorf("activity log header has no %q column", colDate)
	}
	return nil
}

func (r *Reader) skip(line int, reason string) {
	r.stats.Skipped++
	r.logger.Debug("skipping row", "line", line, "reason", reason)
}

// field returns the trimmed value of the named column, or "" when the column
// is absent from the header or the row is short.
func (r *Reader) field(record []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseRow emits the edges of one row. It returns a non-empty reason when
// the row yields nothing.
func (r *Reader) parseRow(record []string) string {
	ts, err := ParseTimestamp(r.field(record, colDate))
	if err != nil {
		return err.Error()
	}

	var tail, head, kind string
	switch {
	case r.field(record, colEmailActivity) != "":
		kind = r.field(record, colEmailActivity)
		tail = r.field(record, colHost)
		if tail == "" {
			return "email row without host"
		}
		head = r.emailName(r.field(record, colEmailContent))
		if kind == "Send" {
			for _, file := range SplitAttachments(r.field(record, colEmailAttachments)) {
				r.emit(fmt.Sprintf("%s%d", AttachKind, len(r.edges)), ts, file, head, AttachKind)
			}
		}

	case r.field(record, colFileActivity) != "":
		kind = r.field(record, colFileActivity)
		tail, head = r.field(record, colHost), r.field(record, colFileFilename)

	case r.field(record, colDeviceActivity) != "":
		kind = r.field(record, colDeviceActivity)
		tail, head = r.field(record, colUser), r.field(record, colHost)

	case r.field(record, colHTTPActivity) != "":
		kind = r.field(record, colHTTPActivity)
		tail, head = r.field(record, colHost), r.field(record, colHTTPURL)

	case r.field(record, colLogonActivity) != "":
		kind = r.field(record, colLogonActivity)
		tail, head = r.field(record, colUser), r.field(record, colHost)

	default:
		return "no activity"
	}

	if tail == "" || head == "" {
		return kind + " row with missing endpoint"
	}
	r.emit(strconv.Itoa(len(r.edges)+1), ts, tail, head, kind)
	return ""
}

func (r *Reader) emit(name string, ts int64, tail, head, kind string) {
	r.edges = append(r.edges, graph.Edge{
		Name:      name,
		Timestamp: ts,
		Tail:      Sanitize(tail),
		Head:      Sanitize(head),
		Kind:      Sanitize(kind),
	})
	r.stats.Edges++
}

// emailName returns the vertex name of the email with the given content,
// allocating email<N> on first sight.
func (r *Reader) emailName(content string) string {
	if name, ok := r.emails[content]; ok {
		return name
	}
	name := "email" + strconv.Itoa(len(r.emails))
	r.emails[content] = name
	return name
}

// ParseTimestamp reads an integer timestamp or a CERT date. CERT dates are
// returned as UTC Unix milliseconds.
func ParseTimestamp(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("missing date")
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ts, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q", s)
	}
	return t.UnixMilli(), nil
}

// SplitAttachments splits a ';'-separated attachment list and drops the
// parenthesised size suffix of each entry.
//
//	SplitAttachments(`C:\a.doc(2071);C:\b.pdf(88)`) // [C:\a.doc C:\b.pdf]
func SplitAttachments(s string) []string {
	var files []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if strings.HasSuffix(part, ")") {
			if i := strings.LastIndex(part, "("); i >= 0 {
				part = strings.TrimSpace(part[:i])
			}
		}
		if part != "" {
			files = append(files, part)
		}
	}
	return files
}

var unsafeChars = strings.NewReplacer(",", "_", "\r", "_", "\n", "_")

// Sanitize NFC-normalises s and replaces the characters the graph text
// format cannot carry (comma, CR, LF) with '_'.
func Sanitize(s string) string {
	return unsafeChars.Replace(norm.NFC.String(s))
}
