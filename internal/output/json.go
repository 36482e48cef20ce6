package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/spergel/princeton-academic-events/internal/schema"
)

// JSONWriter writes a dataset as a single JSON document, the shape the
// published corpus files use.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
	}
}

// WriteDataset writes the dataset as one JSON object.
func (w *JSONWriter) WriteDataset(ds *schema.Dataset) error {
	var output []byte
	var err error
	if w.pretty {
		output, err = json.MarshalIndent(ds, "", w.indent)
	} else {
		output, err = json.Marshal(ds)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONWriter) Close() error {
	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON: the metadata object on the
// first line, then one event per line. Convenient for streaming consumers.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		w: bufio.NewWriter(w),
	}
}

// WriteDataset writes the metadata line followed by one line per event.
func (w *JSONLWriter) WriteDataset(ds *schema.Dataset) error {
	if err := w.writeLine(ds.Metadata); err != nil {
		return err
	}
	for _, e := range ds.Events {
		if err := w.writeLine(e); err != nil {
			return err
		}
	}
	return w.w.Flush()
}

func (w *JSONLWriter) writeLine(data any) error {
	output, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(output); err != nil {
		return err
	}
	_, err = w.w.WriteString("\n")
	return err
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.w.Flush()
}
