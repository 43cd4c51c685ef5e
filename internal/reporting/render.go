package reporting

import "fmt"

// Format names an output rendering.
type Format string

// Output formats
const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat parses an output format name. Empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be 'markdown', 'csv' or 'json'", s)
	}
}

// ContentType returns the HTTP content type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Render renders v in the given format.
func Render(v *View, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		s, err := RenderCSV(v)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	case FormatJSON:
		return RenderJSON(v)
	default:
		return []byte(RenderMarkdown(v)), nil
	}
}
