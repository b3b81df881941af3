package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Confidence describes how much structure a model response yielded.
type Confidence int

const (
	// ConfidenceEmpty means nothing usable was extracted.
	ConfidenceEmpty Confidence = iota
	// ConfidencePartial means the line-by-line fallback found some fields.
	ConfidencePartial
	// ConfidenceFull means a JSON object was extracted and decoded.
	ConfidenceFull
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceFull:
		return "full"
	case ConfidencePartial:
		return "partial"
	default:
		return "empty"
	}
}

// ParseResult holds the fields extracted from one model response.
type ParseResult struct {
	Fields     map[string]string
	Confidence Confidence
}

var jsonBlobPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseResponse extracts structured fields from a model's free-text
// answer. It tries to decode an embedded JSON object first; failing
// that, it splits lines on the first colon. Keys are lowercased with
// spaces replaced by underscores.
func ParseResponse(text string) ParseResult {
	if blob := jsonBlobPattern.FindString(text); blob != "" {
		var raw map[string]any
		if err := json.Unmarshal([]byte(blob), &raw); err == nil {
			fields := make(map[string]string, len(raw))
			for key, value := range raw {
				fields[normalizeFieldKey(key)] = stringifyField(value)
			}
			return ParseResult{Fields: fields, Confidence: ConfidenceFull}
		}
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = normalizeFieldKey(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		fields[key] = value
	}

	if len(fields) == 0 {
		return ParseResult{Fields: fields, Confidence: ConfidenceEmpty}
	}
	return ParseResult{Fields: fields, Confidence: ConfidencePartial}
}

func normalizeFieldKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}

// stringifyField flattens JSON values so list-valued answers like
// colors survive as comma-separated strings.
func stringifyField(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringifyField(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// fromFields builds an Analysis from parsed fields. Unknown keys are
// ignored; aliases like "year" and "subject" are accepted.
func fromFields(fields map[string]string) Analysis {
	a := Analysis{
		Title:               fields["title"],
		Artist:              fields["artist"],
		Medium:              fields["medium"],
		Style:               fields["style"],
		SubjectMatter:       firstOf(fields, "subject_matter", "subject"),
		Condition:           fields["condition"],
		EstimatedYear:       firstOf(fields, "estimated_year", "year"),
		SizeCategory:        firstOf(fields, "size_category", "size"),
		FrameInfo:           firstOf(fields, "frame_info", "framing"),
		Colors:              splitList(fields["colors"]),
		AuthenticityMarkers: splitList(fields["authenticity_markers"]),
		Keywords:            splitList(fields["keywords"]),
	}

	switch strings.ToLower(firstOf(fields, "signature_present", "signed")) {
	case "true", "yes", "1":
		a.SignaturePresent = true
	}

	return a
}

func firstOf(fields map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := fields[key]; v != "" {
			return v
		}
	}
	return ""
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
