package models

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestParseDetectionKind(t *testing.T) {
	kind, err := ParseDetectionKind(" url ")
	require.NoError(t, err)
	assert.Equal(t, KindURL, kind)

	_, err = ParseDetectionKind("video")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)
}

func TestAnalysisRequest_Validate(t *testing.T) {
	png := &Image{MIMEType: "image/png", Data: pngHeader}

	tests := []struct {
		name    string
		req     AnalysisRequest
		wantMsg string
	}{
		{"text ok", AnalysisRequest{Kind: KindText, RawInput: "The earth is flat."}, ""},
		{"text blank", AnalysisRequest{Kind: KindText, RawInput: " \n\t"}, "Please enter text for investigation."},
		{"url ok", AnalysisRequest{Kind: KindURL, RawInput: "https://news.example/story?id=1"}, ""},
		{"url no scheme", AnalysisRequest{Kind: KindURL, RawInput: "news.example/story"}, "Please enter a valid investigation URL."},
		{"url ftp", AnalysisRequest{Kind: KindURL, RawInput: "ftp://news.example/a"}, "Please enter a valid investigation URL."},
		{"url empty", AnalysisRequest{Kind: KindURL}, "Please enter a valid investigation URL."},
		{"image ok", AnalysisRequest{Kind: KindImage, Image: png}, ""},
		{"image missing", AnalysisRequest{Kind: KindImage}, "Please upload a file for forensic scanning."},
		{"image not an image", AnalysisRequest{Kind: KindImage, Image: &Image{MIMEType: "application/pdf", Data: []byte("%PDF")}}, "The uploaded file is not a supported image."},
		{"unknown kind", AnalysisRequest{Kind: "AUDIO", RawInput: "x"}, `Unsupported detection type "AUDIO".`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
		})
	}
}

func TestIsAbsoluteURL(t *testing.T) {
	assert.True(t, IsAbsoluteURL("http://a.example"))
	assert.True(t, IsAbsoluteURL("  https://a.example/path  "))
	assert.False(t, IsAbsoluteURL("https://"))
	assert.False(t, IsAbsoluteURL("/relative/path"))
	assert.False(t, IsAbsoluteURL("javascript:alert(1)"))
}

func TestParseImageDataURL(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngHeader)

	t.Run("data url", func(t *testing.T) {
		img, err := ParseImageDataURL("data:image/png;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, pngHeader, img.Data)
	})

	t.Run("bare base64", func(t *testing.T) {
		img, err := ParseImageDataURL(encoded)
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
	})

	t.Run("sniffed type wins over declared", func(t *testing.T) {
		img, err := ParseImageDataURL("data:image/jpeg;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
	})

	t.Run("unpadded", func(t *testing.T) {
		img, err := ParseImageDataURL(base64.RawStdEncoding.EncodeToString(pngHeader))
		require.NoError(t, err)
		assert.Equal(t, pngHeader, img.Data)
	})

	failures := map[string]string{
		"empty":       "",
		"no comma":    "data:image/png;base64",
		"not base64":  "data:image/png,rawbytes",
		"bad payload": "data:image/png;base64,***",
	}
	for name, input := range failures {
		t.Run(name, func(t *testing.T) {
			_, err := ParseImageDataURL(input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "imageData", verr.Field)
		})
	}
}

func TestNewImage(t *testing.T) {
	assert.Equal(t, "image/png", NewImage(pngHeader, "").MIMEType)
	assert.Equal(t, "image/webp", NewImage([]byte("not really"), "image/webp").MIMEType)
	assert.False(t, strings.HasPrefix(NewImage([]byte("plain text"), "").MIMEType, "image/"))
}
