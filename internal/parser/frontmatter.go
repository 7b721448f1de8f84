package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// frontMatter is the YAML header of a Markdown file.
type frontMatter struct {
	title      string
	attributes map[string]string
	body       []byte
	// lines is the number of source lines the header occupies.
	lines int
}

// splitFrontMatter separates a leading "---" delimited YAML block from
// the Markdown body. Without one the whole source is the body.
func splitFrontMatter(src []byte) (frontMatter, error) {
	fm := frontMatter{body: src}
	first, rest, ok := cutLine(src)
	if !ok || strings.TrimSpace(string(first)) != "---" {
		return fm, nil
	}

	var header []byte
	lines := 1
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = cutLine(rest)
		lines++
		if trimmed := strings.TrimSpace(string(line)); trimmed == "---" || trimmed == "..." {
			return parseFrontMatter(header, rest, lines)
		}
		header = append(header, line...)
		header = append(header, '\n')
	}
	// no closing delimiter: not front matter
	return fm, nil
}

func parseFrontMatter(header, body []byte, lines int) (frontMatter, error) {
	var values map[string]any
	if err := yaml.Unmarshal(header, &values); err != nil {
		return frontMatter{}, fmt.Errorf("parse front matter: %w", err)
	}

	fm := frontMatter{attributes: make(map[string]string, len(values)), body: body, lines: lines}
	for k, v := range values {
		k = strings.ToLower(k)
		if k == "title" {
			fm.title = attributeValue(v)
			continue
		}
		fm.attributes[k] = attributeValue(v)
	}
	return fm, nil
}

// attributeValue flattens a YAML value; lists become comma-separated.
func attributeValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = attributeValue(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// cutLine splits off the first line, without its line ending.
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}
