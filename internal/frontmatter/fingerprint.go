package frontmatter

import (
	"fmt"
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// ComputeFingerprint returns the mdfp fingerprint of the fields (without the
// fingerprint field itself) and body. Fields are serialized with sorted keys
// and LF newlines so the value does not depend on source formatting.
func ComputeFingerprint(fields map[string]any, body string) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		hashed[k] = v
	}

	fm := ""
	if len(hashed) > 0 {
		out, err := yaml.Marshal(hashed)
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(out), "\n")
	}

	return mdfp.CalculateFingerprintFromParts(fm, strings.ReplaceAll(body, "\r\n", "\n")), nil
}

// RefreshFingerprint recomputes the fingerprint of a document that already
// carries one. Documents without frontmatter or without a fingerprint field
// are returned unchanged. Only the fingerprint line is rewritten; the rest of
// the frontmatter keeps its original formatting.
func RefreshFingerprint(content string) (string, bool, error) {
	doc, err := Split(content)
	if err != nil {
		return content, false, err
	}
	if !doc.Had {
		return content, false, nil
	}

	fields, err := doc.Fields()
	if err != nil {
		return content, false, fmt.Errorf("parse frontmatter: %w", err)
	}
	current, ok := fields[mdfp.FingerprintField]
	if !ok {
		return content, false, nil
	}

	fp, err := ComputeFingerprint(fields, doc.Body)
	if err != nil {
		return content, false, err
	}
	if s, isString := current.(string); isString && s == fp {
		return content, false, nil
	}

	raw, err := replaceFieldLine(doc.Raw, doc.Newline, mdfp.FingerprintField, fp)
	if err != nil {
		return content, false, err
	}
	doc.Raw = raw
	return doc.String(), true, nil
}

// replaceFieldLine rewrites the top-level "key: value" line of raw.
func replaceFieldLine(raw, nl, key, value string) (string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil {
		return "", err
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return "", fmt.Errorf("frontmatter is not a mapping")
	}

	mapping := node.Content[0]
	line := 0
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			line = mapping.Content[i].Line
			break
		}
	}
	if line == 0 {
		return "", fmt.Errorf("field %q not found", key)
	}

	lines := strings.Split(raw, nl)
	if line > len(lines) {
		return "", fmt.Errorf("field %q line %d out of range", key, line)
	}
	encoded, err := yaml.Marshal(value)
	if err != nil {
		return "", err
	}
	lines[line-1] = key + ": " + strings.TrimSuffix(string(encoded), "\n")
	return strings.Join(lines, nl), nil
}
