// Package desktop generates and validates desktop-entry files, the
// metadata files that let graphical launchers display and start a program.
package desktop

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// Generate renders a desktop-entry document from recipe fields.
// Key order is fixed so generated files are reproducible.
func Generate(e *recipe.DesktopEntry) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	writeKey(&b, "Name", e.Name)
	writeKey(&b, "GenericName", e.GenericName)
	writeKey(&b, "Comment", e.Comment)
	writeKey(&b, "Exec", e.Exec)
	writeKey(&b, "Icon", e.Icon)
	fmt.Fprintf(&b, "Terminal=%t\n", e.Terminal)
	if len(e.Categories) > 0 {
		fmt.Fprintf(&b, "Categories=%s;\n", strings.Join(e.Categories, ";"))
	}
	return b.String()
}

func writeKey(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s=%s\n", key, value)
}

// Parse extracts the [Desktop Entry] group as a key/value map.
func Parse(content string) (map[string]string, error) {
	entries := make(map[string]string)
	inGroup := false
	sawGroup := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inGroup = line == "[Desktop Entry]"
			if inGroup {
				sawGroup = true
			}
			continue
		}
		if !inGroup {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("malformed desktop entry line: %q", line)
		}
		entries[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if !sawGroup {
		return nil, fmt.Errorf("missing [Desktop Entry] group")
	}
	return entries, nil
}

// Keys returns the parsed keys in sorted order, used by lint output.
func Keys(entries map[string]string) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
