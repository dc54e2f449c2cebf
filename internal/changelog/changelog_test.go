package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
)

const sampleChangelog = `# Changelog

## [1.4.0] - 2026-07-12

### Added

- Image preview via chafa
- Bulk rename mode

### Fixed

- Crash when entering an unreadable directory

## [1.3.2] - 2026-05-03

- Minor fixes
`

func TestExtractFindsVersionSection(t *testing.T) {
	section, err := Extract([]byte(sampleChangelog), "1.4.0")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	text := string(section)
	if !strings.Contains(text, "Image preview via chafa") {
		t.Errorf("section missing expected entry, got:\n%s", text)
	}
	if strings.Contains(text, "Minor fixes") {
		t.Errorf("section leaked into next version, got:\n%s", text)
	}
}

func TestExtractKeepsSubheadings(t *testing.T) {
	section, err := Extract([]byte(sampleChangelog), "1.4.0")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.Contains(string(section), "### Fixed") {
		t.Errorf("lower-level headings should stay in the section, got:\n%s", section)
	}
}

func TestExtractMissingVersion(t *testing.T) {
	_, err := Extract([]byte(sampleChangelog), "9.9.9")
	if err == nil {
		t.Fatal("expected error for missing version")
	}
	if ferrors.CategoryOf(err) != ferrors.CategoryNotFound {
		t.Errorf("category = %v, want %v", ferrors.CategoryOf(err), ferrors.CategoryNotFound)
	}
}

func TestExtractLastSectionRunsToEnd(t *testing.T) {
	section, err := Extract([]byte(sampleChangelog), "1.3.2")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(string(section), "Minor fixes") {
		t.Errorf("last section should run to end of file, got:\n%s", section)
	}
}

func TestPlainTextFlattensList(t *testing.T) {
	section, err := Extract([]byte(sampleChangelog), "1.4.0")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	rendered, err := RenderHTML(section)
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	if !strings.Contains(rendered, "<li>") {
		t.Fatalf("rendered section missing list markup:\n%s", rendered)
	}

	plain, err := PlainText(rendered)
	if err != nil {
		t.Fatalf("PlainText() error = %v", err)
	}
	if !strings.Contains(plain, "- Image preview via chafa") {
		t.Errorf("plain text missing bulleted entry, got:\n%s", plain)
	}
	if strings.Contains(plain, "<") {
		t.Errorf("plain text still contains markup:\n%s", plain)
	}
}

func TestNotesReadsCheckout(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(sampleChangelog), 0o644); err != nil {
		t.Fatal(err)
	}

	notes, err := Notes(dir, "1.4.0")
	if err != nil {
		t.Fatalf("Notes() error = %v", err)
	}
	if !strings.Contains(notes, "Bulk rename mode") {
		t.Errorf("notes missing entry, got:\n%s", notes)
	}
}

func TestNotesMissingChangelog(t *testing.T) {
	_, err := Notes(t.TempDir(), "1.0.0")
	if err == nil {
		t.Fatal("expected error for missing changelog")
	}
	if ferrors.CategoryOf(err) != ferrors.CategoryNotFound {
		t.Errorf("category = %v, want %v", ferrors.CategoryOf(err), ferrors.CategoryNotFound)
	}
}
