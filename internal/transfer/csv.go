package transfer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/margindesk/margindesk/internal/schema"
	"github.com/margindesk/margindesk/internal/table"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024

	// utf8BOM keeps Excel from mangling Cyrillic headers.
	utf8BOM = "\xEF\xBB\xBF"
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeBOM() error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	_, err := s.buf.WriteString(utf8BOM)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.flush()
	}
	return nil
}

func (s *csvStreamer) flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// WriteInventoryCSV streams the rendered inventory table: a header of visible
// column names followed by one row of formatted cell values per product.
func WriteInventoryCSV(w io.Writer, m *table.Materializer) error {
	view, err := m.Render(schema.TableInventory)
	if err != nil {
		return err
	}

	streamer := newCSVStreamer(w)
	if err := streamer.writeBOM(); err != nil {
		return err
	}
	header := make([]string, len(view.Columns))
	for i, col := range view.Columns {
		header[i] = col.Name
	}
	if err := streamer.writeRow(header); err != nil {
		return err
	}
	for _, row := range view.Rows {
		record := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			// Action cells have no text; export them as the empty-value dash.
			if view.Columns[i].Type == schema.TypeActions {
				record[i] = "—"
				continue
			}
			record[i] = cell.Value
		}
		if err := streamer.writeRow(record); err != nil {
			return err
		}
	}
	return streamer.flush()
}
