// Package changelog extracts the release-notes section for a derived
// version from a checkout's CHANGELOG.md.
//
// The section is located through the markdown AST: the first top-level
// heading whose text contains the version opens the section, the next
// heading of the same or higher level closes it. The section can be
// rendered to HTML or flattened to plain terminal text.
package changelog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
)

// DefaultFile is the changelog filename looked up in a checkout.
const DefaultFile = "CHANGELOG.md"

// Extract returns the markdown section for a version from changelog source.
func Extract(source []byte, version string) ([]byte, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	start := -1
	end := len(source)
	level := 0

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*gmast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}
		seg := heading.Lines().At(0)
		if start == -1 {
			if strings.Contains(string(source[seg.Start:seg.Stop]), version) {
				start = seg.Stop
				level = heading.Level
			}
			continue
		}
		if heading.Level <= level {
			end = lineStart(source, seg.Start)
			break
		}
	}

	if start == -1 {
		return nil, ferrors.NotFoundError("no changelog section for version").
			WithContext("version", version).Build()
	}

	return bytes.TrimSpace(source[start:end]), nil
}

// RenderHTML converts a markdown section to HTML.
func RenderHTML(section []byte) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(section, &buf); err != nil {
		return "", fmt.Errorf("failed to render changelog section: %w", err)
	}
	return buf.String(), nil
}

// PlainText flattens rendered HTML to terminal text: element text joined
// with newlines after block-level elements, list items bulleted.
func PlainText(rendered string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return "", fmt.Errorf("failed to parse rendered changelog: %w", err)
	}

	var b strings.Builder
	flatten(doc, &b)

	// Collapse runs of blank lines left by nested block elements.
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	var out []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " ")
		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n"), nil
}

// Notes is the convenience path used by the CLI: read the checkout's
// changelog, extract the version section, and flatten it for the terminal.
func Notes(checkoutDir, version string) (string, error) {
	source, err := os.ReadFile(filepath.Join(checkoutDir, DefaultFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ferrors.NotFoundError("checkout has no changelog").
				WithContext("file", DefaultFile).Build()
		}
		return "", fmt.Errorf("failed to read changelog: %w", err)
	}

	section, err := Extract(source, version)
	if err != nil {
		return "", err
	}

	rendered, err := RenderHTML(section)
	if err != nil {
		return "", err
	}

	return PlainText(rendered)
}

// flatten walks HTML nodes accumulating text content.
func flatten(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		if n.Data == "li" {
			b.WriteString("- ")
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		flatten(child, b)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "li", "ul", "ol", "br", "h1", "h2", "h3", "h4", "h5", "h6", "pre":
			b.WriteString("\n")
		}
	}
}

// lineStart returns the offset of the beginning of the line containing pos.
func lineStart(source []byte, pos int) int {
	if idx := bytes.LastIndexByte(source[:pos], '\n'); idx >= 0 {
		return idx + 1
	}
	return 0
}
