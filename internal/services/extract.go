package services

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/rahul4469/verifact/internal/models"
)

// fencedBlock spans from the first fence opener, with any language tag, to
// the last closing fence.
var fencedBlock = regexp.MustCompile("(?is)```[a-z0-9_+.-]*(.*)```")

// ExtractJSON recovers a structured value from model output. The trimmed text
// is parsed as is; failing that, the contents of the fenced code block are
// tried; failing that, the span from the first '{' to the last '}' of the
// original text. Anything else is a *models.DataIntegrityError.
func ExtractJSON(raw string) (any, error) {
	value, err := parseStructured(strings.TrimSpace(raw))
	if err == nil {
		return value, nil
	}

	// Fence markers are only removed around the payload, never inside it.
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		if value, fenceErr := parseStructured(strings.TrimSpace(m[1])); fenceErr == nil {
			return value, nil
		}
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start >= 0 && end > start {
		if value, braceErr := parseStructured(raw[start : end+1]); braceErr == nil {
			return value, nil
		}
	}

	return nil, &models.DataIntegrityError{Raw: raw, Err: err}
}

func parseStructured(s string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(s), &value); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errNullPayload
	}
	return value, nil
}

var errNullPayload = errors.New("payload is JSON null")
