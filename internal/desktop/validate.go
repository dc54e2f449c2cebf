package desktop

import (
	"fmt"
	"strings"
)

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one validation result.
type Finding struct {
	Severity Severity
	Key      string
	Message  string
}

// validExecCodes are the field codes accepted in Exec lines.
var validExecCodes = map[byte]bool{
	'f': true, 'F': true, 'u': true, 'U': true,
	'i': true, 'c': true, 'k': true, '%': true,
}

// Validate checks a desktop-entry document and returns findings.
// A missing required key is an error; weaker problems are warnings.
func Validate(content string) []Finding {
	entries, err := Parse(content)
	if err != nil {
		return []Finding{{Severity: SeverityError, Message: err.Error()}}
	}

	var findings []Finding

	for _, required := range []string{"Type", "Name", "Exec"} {
		if entries[required] == "" {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Key:      required,
				Message:  fmt.Sprintf("required key %s is missing or empty", required),
			})
		}
	}

	if typ, ok := entries["Type"]; ok && typ != "" && typ != "Application" && typ != "Link" && typ != "Directory" {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Key:      "Type",
			Message:  fmt.Sprintf("unknown Type %q", typ),
		})
	}

	if exec := entries["Exec"]; exec != "" {
		findings = append(findings, validateExecCodes(exec)...)
	}

	if entries["Icon"] == "" {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Key:      "Icon",
			Message:  "Icon is not set; launchers will show a placeholder",
		})
	}

	if categories, ok := entries["Categories"]; ok && categories != "" && !strings.HasSuffix(categories, ";") {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Key:      "Categories",
			Message:  "Categories list should end with a semicolon",
		})
	}

	return findings
}

// validateExecCodes flags unknown %-field codes in an Exec line.
func validateExecCodes(exec string) []Finding {
	var findings []Finding
	for i := 0; i < len(exec)-1; i++ {
		if exec[i] != '%' {
			continue
		}
		code := exec[i+1]
		if !validExecCodes[code] {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Key:      "Exec",
				Message:  fmt.Sprintf("unknown field code %%%c", code),
			})
		}
		i++ // skip the code character
	}
	if strings.HasSuffix(exec, "%") {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Key:      "Exec",
			Message:  "dangling % at end of Exec line",
		})
	}
	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
