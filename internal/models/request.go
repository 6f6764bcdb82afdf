package models

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectionKind is the type of content submitted for analysis.
type DetectionKind string

const (
	KindText  DetectionKind = "TEXT"
	KindURL   DetectionKind = "URL"
	KindImage DetectionKind = "IMAGE"
)

// ParseDetectionKind accepts the wire names case-insensitively.
func ParseDetectionKind(s string) (DetectionKind, error) {
	switch DetectionKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindText:
		return KindText, nil
	case KindURL:
		return KindURL, nil
	case KindImage:
		return KindImage, nil
	}
	return "", &ValidationError{Field: "type", Message: fmt.Sprintf("Unsupported detection type %q.", s)}
}

// Image is a decoded image payload. Data holds raw bytes; base64 encoding
// only happens at the service-call boundary.
type Image struct {
	MIMEType string
	Data     []byte
}

// AnalysisRequest is built per call and discarded with it.
type AnalysisRequest struct {
	Kind     DetectionKind
	RawInput string
	Image    *Image
}

// Validate checks the per-kind input invariants before any network call.
func (r AnalysisRequest) Validate() error {
	switch r.Kind {
	case KindText:
		if strings.TrimSpace(r.RawInput) == "" {
			return &ValidationError{Field: "input", Message: "Please enter text for investigation."}
		}
	case KindURL:
		if strings.TrimSpace(r.RawInput) == "" || !IsAbsoluteURL(r.RawInput) {
			return &ValidationError{Field: "input", Message: "Please enter a valid investigation URL."}
		}
	case KindImage:
		if r.Image == nil || len(r.Image.Data) == 0 {
			return &ValidationError{Field: "imageData", Message: "Please upload a file for forensic scanning."}
		}
		if !strings.HasPrefix(r.Image.MIMEType, "image/") {
			return &ValidationError{Field: "imageData", Message: "The uploaded file is not a supported image."}
		}
	default:
		return &ValidationError{Field: "type", Message: fmt.Sprintf("Unsupported detection type %q.", r.Kind)}
	}
	return nil
}

// IsAbsoluteURL reports whether s parses as an http(s) URL with a host.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ParseImageDataURL decodes either a "data:<mime>;base64,<payload>" URL or a
// bare base64 string. The MIME type is sniffed from the decoded bytes, the
// declared type is only a fallback.
func ParseImageDataURL(s string) (*Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &ValidationError{Field: "imageData", Message: "Please upload a file for forensic scanning."}
	}

	declared := ""
	payload := s
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, &ValidationError{Field: "imageData", Message: "Malformed image data URL."}
		}
		header := s[len("data:"):comma]
		payload = s[comma+1:]
		if !strings.HasSuffix(header, ";base64") {
			return nil, &ValidationError{Field: "imageData", Message: "Image data must be base64 encoded."}
		}
		declared = strings.TrimSuffix(header, ";base64")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some browsers emit unpadded payloads.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, &ValidationError{Field: "imageData", Message: "Image data is not valid base64."}
		}
	}
	if len(data) == 0 {
		return nil, &ValidationError{Field: "imageData", Message: "Please upload a file for forensic scanning."}
	}

	return NewImage(data, declared), nil
}

// NewImage wraps raw bytes, sniffing the MIME type. declared is used only
// when sniffing does not recognise an image.
func NewImage(data []byte, declared string) *Image {
	mime := mimetype.Detect(data).String()
	if !strings.HasPrefix(mime, "image/") && strings.HasPrefix(declared, "image/") {
		mime = declared
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return &Image{MIMEType: mime, Data: data}
}
