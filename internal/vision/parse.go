package vision

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cinelog/ticket-scanner/internal/ticket"
)

// ParseTicketJSON recovers a Fields value from a model response. Backends
// wrap answers in markdown fences or pad them with prose often enough that a
// strict unmarshal alone loses usable extractions: strip fences first, try
// the whole string, then fall back to the first balanced JSON object inside
// it. Whatever parses is intersected with the canonical eleven-key template.
func ParseTicketJSON(log *slog.Logger, raw string) (ticket.Fields, error) {
	s := stripFences(raw)
	if s == "" {
		return ticket.EmptyFields(), fmt.Errorf("empty response")
	}

	obj, err := decodeObject(s)
	if err != nil {
		inner, ok := firstJSONObject(s)
		if !ok {
			return ticket.EmptyFields(), fmt.Errorf("no json object in response: %w", err)
		}
		obj, err = decodeObject(inner)
		if err != nil {
			return ticket.EmptyFields(), fmt.Errorf("parse embedded json: %w", err)
		}
		s = inner
	}

	// Strict shape check first; fall back to the lenient template
	// intersection when the model added extra keys or wrong types. A
	// response that both fails the schema and carries no canonical key at
	// all is not a ticket extraction, so it is rejected outright.
	if verr := ticket.ValidateJSONAgainstSchema(ticket.BuildTicketJSONSchema(), []byte(s)); verr != nil {
		f := ticket.FieldsFromMap(obj)
		if f.CountPopulated() == 0 && f.Title() == "" {
			return ticket.EmptyFields(), fmt.Errorf("response shape invalid: %w", verr)
		}
		log.Warn("vision.parse.lenient", "error", verr)
		return f, nil
	}
	return ticket.FieldsFromMap(obj), nil
}

func decodeObject(s string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// stripFences removes a leading/trailing markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// firstJSONObject slices from the first '{' to its balanced closing '}'.
// Braces inside string literals are skipped.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
