package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/spergel/princeton-academic-events/internal/schema"
)

// YAMLWriter writes a dataset as YAML.
type YAMLWriter struct {
	w *bufio.Writer
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w: bufio.NewWriter(w),
	}
}

// WriteDataset encodes the dataset as a YAML document.
func (w *YAMLWriter) WriteDataset(ds *schema.Dataset) error {
	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	if err := encoder.Encode(ds); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *YAMLWriter) Close() error {
	return w.w.Flush()
}
