package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type JSONLWriter struct {
	encoder *json.Encoder
}

func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		encoder: json.NewEncoder(w),
	}
}

func (w *JSONLWriter) Write(v any) error {
	return w.encoder.Encode(v)
}

// WriteDocument 每行写出一个类，按类名顺序
func (w *JSONLWriter) WriteDocument(doc Document) (int, error) {
	count := 0
	for _, name := range doc.Names() {
		if err := w.Write(doc[name]); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// WriteJSON 将整个文档写为一个缩进的 JSON 对象
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Export 按格式把文档写入文件：jsonl、json 或 mermaid
func Export(path, format string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Write(f, format, doc); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}

// Write 按格式把文档写入 w
func Write(w io.Writer, format string, doc Document) error {
	switch format {
	case FormatJSONL, "":
		_, err := NewJSONLWriter(w).WriteDocument(doc)
		return err
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatMermaid:
		return WriteMermaidHTML(w, doc)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

const (
	FormatJSONL   = "jsonl"
	FormatJSON    = "json"
	FormatMermaid = "mermaid"
)
