// Package validation holds the input rules for the card service API.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/evervow/card-services/internal/cardsvc/apperr"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 50
	PasswordMinLen = 6
	PasswordMaxLen = 128
	MessageMinLen  = 10
	MessageMaxLen  = 1000

	// MinSampleSize rejects clicks and near-empty recordings.
	MinSampleSize = 1024
	// MaxCardSampleSize bounds the voice sample attached at card creation.
	MaxCardSampleSize = 10 << 20
	// MaxCloneSampleSize bounds samples sent to the dedicated clone endpoint.
	MaxCloneSampleSize = 25 << 20
)

// audioExtensions lists accepted voice sample formats.
var audioExtensions = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"webm": true,
	"ogg":  true,
	"m4a":  true,
}

// Sanitize strips characters that could leak into HTML or filenames.
func Sanitize(s string) string {
	replacer := strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "", "\x00", "")
	return strings.TrimSpace(replacer.Replace(s))
}

// Length limits count characters, not bytes, so multibyte input is not cut
// short of its advertised bound.

func Username(username string) error {
	if n := utf8.RuneCountInString(username); n < UsernameMinLen || n > UsernameMaxLen {
		return apperr.Invalid(fmt.Sprintf("username must be between %d and %d characters", UsernameMinLen, UsernameMaxLen))
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return apperr.Invalid("username can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func Password(password string) error {
	if n := utf8.RuneCountInString(password); n < PasswordMinLen || n > PasswordMaxLen {
		return apperr.Invalid(fmt.Sprintf("password must be between %d and %d characters", PasswordMinLen, PasswordMaxLen))
	}
	return nil
}

func Message(message string) error {
	if n := utf8.RuneCountInString(message); n < MessageMinLen || n > MessageMaxLen {
		return apperr.Invalid(fmt.Sprintf("message must be between %d and %d characters", MessageMinLen, MessageMaxLen))
	}
	return nil
}

// AudioExt extracts and checks the file extension of an uploaded sample.
// Returns the extension without the leading dot.
func AudioExt(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "", apperr.Invalid("file must have an audio extension")
	}
	if !audioExtensions[ext] {
		return "", apperr.Invalid("file type not allowed; allowed types: wav, mp3, webm, ogg, m4a")
	}
	return ext, nil
}

// SampleSize checks an uploaded voice sample against the given upper bound.
func SampleSize(size int64, max int64) error {
	if size < MinSampleSize {
		return apperr.Invalid("audio file is too small; please upload a longer voice sample")
	}
	if size > max {
		return apperr.Invalid(fmt.Sprintf("file size must be less than %dMB", max>>20))
	}
	return nil
}
