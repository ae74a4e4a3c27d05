package workspace

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a markdown file split into its YAML frontmatter and body.
type Document struct {
	Path        string
	Frontmatter map[string]interface{}
	Body        string
}

// ParseDocument splits data into frontmatter and body. A document whose
// frontmatter does not decode keeps the whole text as body.
func ParseDocument(path string, data []byte) (*Document, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)

	var fmLines, body []string
	inFrontmatter, closed := false, false
	n := 0
	for scanner.Scan() {
		line := scanner.Text()
		n++
		if n == 1 && strings.TrimSpace(line) == "---" {
			inFrontmatter = true
			continue
		}
		if inFrontmatter {
			if strings.TrimSpace(line) == "---" {
				inFrontmatter = false
				closed = true
				continue
			}
			fmLines = append(fmLines, line)
			continue
		}
		body = append(body, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	doc := &Document{Path: path}
	if !closed {
		doc.Body = string(data)
		return doc, nil
	}
	if fm := strings.Join(fmLines, "\n"); strings.TrimSpace(fm) != "" {
		var raw map[string]interface{}
		if err := yaml.Unmarshal([]byte(fm), &raw); err != nil {
			doc.Body = string(data)
			return doc, nil
		}
		doc.Frontmatter = raw
	}
	doc.Body = strings.Join(body, "\n")
	return doc, nil
}

// renderDocument renders the body of a markdown file and returns its
// frontmatter separately.
func renderDocument(path string, data []byte) (map[string]interface{}, string) {
	doc, err := ParseDocument(path, data)
	if err != nil {
		return nil, RenderMarkdown(string(data))
	}
	return doc.Frontmatter, RenderMarkdown(doc.Body)
}
