package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/maxvaer/netsweep/internal/scanner"
)

// YAMLWriter buffers results and writes a single YAML document.
type YAMLWriter struct {
	w   io.Writer
	doc report
}

// NewYAMLWriter creates a YAML report writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{w: w}
}

func (y *YAMLWriter) WriteHeader(meta Meta) error {
	y.doc.header(meta)
	return nil
}

func (y *YAMLWriter) WriteResult(result *scanner.Result) error {
	y.doc.add(result)
	return nil
}

func (y *YAMLWriter) WriteFooter(stats Stats) error {
	y.doc.footer(stats)
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)
	if err := enc.Encode(&y.doc); err != nil {
		return err
	}
	return enc.Close()
}
