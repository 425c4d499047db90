// Package validation holds the input rules shared by services and handlers.
package validation

import (
	"fmt"
	"math"
	"mime"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MaxCaptionLength     = 150
	MaxCommentLength     = 500
	MaxProfileNameLength = 60
	MaxBioLength         = 300
)

var videoTypes = map[string]struct{}{
	"video/mp4":  {},
	"video/webm": {},
	"video/ogg":  {},
}

var imageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// NormalizeContentType strips parameters and lowercases a MIME type.
func NormalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// ValidateVideo checks an upload against the supported formats and the size limit.
func ValidateVideo(contentType string, size, maxBytes int64) error {
	if _, ok := videoTypes[NormalizeContentType(contentType)]; !ok {
		return fmt.Errorf("unsupported video format %q (use MP4, WebM or Ogg)", contentType)
	}
	return validateSize(size, maxBytes)
}

// ValidateImage checks an avatar upload against the supported formats and the size limit.
func ValidateImage(contentType string, size, maxBytes int64) error {
	if _, ok := imageTypes[NormalizeContentType(contentType)]; !ok {
		return fmt.Errorf("unsupported image format %q", contentType)
	}
	return validateSize(size, maxBytes)
}

func validateSize(size, maxBytes int64) error {
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("file is too large (%s, max %s)", FormatFileSize(size), FormatFileSize(maxBytes))
	}
	return nil
}

// ValidateCaption requires a non-blank caption of at most MaxCaptionLength characters.
func ValidateCaption(text string) error {
	return validateText("caption", text, MaxCaptionLength, true)
}

// ValidateComment requires a non-blank comment of at most MaxCommentLength characters.
func ValidateComment(text string) error {
	return validateText("comment", text, MaxCommentLength, true)
}

// ValidateProfileName requires a non-blank name of at most MaxProfileNameLength characters.
func ValidateProfileName(name string) error {
	return validateText("name", name, MaxProfileNameLength, true)
}

// ValidateBio allows an empty bio of at most MaxBioLength characters.
func ValidateBio(bio string) error {
	return validateText("bio", bio, MaxBioLength, false)
}

func validateText(field, value string, maxLen int, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if n := utf8.RuneCountInString(value); n > maxLen {
		return fmt.Errorf("%s must be at most %d characters (got %d)", field, maxLen, n)
	}
	return nil
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with binary units and up to two decimals.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := math.Round(float64(bytes)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
