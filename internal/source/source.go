// Package source handles the video source URL and its share token.
//
// A share token is the standard base64 encoding of the URL. Links carry it
// in the fragment, so Decode also accepts a leading '#'.
package source

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidURL is returned for URLs that are not absolute http(s) links.
	ErrInvalidURL = errors.New("invalid source url")
	// ErrInvalidShare is returned when a share token cannot be decoded.
	ErrInvalidShare = errors.New("invalid share token")
)

// Validate checks that raw is an absolute http or https URL with a host.
func Validate(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%q: %w", raw, ErrInvalidURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q: scheme must be http or https: %w", raw, ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%q: missing host: %w", raw, ErrInvalidURL)
	}
	return nil
}

// Encode returns the share token for a source URL.
func Encode(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if err := Validate(raw); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// Decode turns a share token, with or without a leading '#', back into a URL.
func Decode(token string) (string, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "#")
	if token == "" {
		return "", ErrInvalidShare
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	if err := Validate(string(raw)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	return string(raw), nil
}

// Link appends the share token to base as a URL fragment.
func Link(base, raw string) (string, error) {
	token, err := Encode(raw)
	if err != nil {
		return "", err
	}
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	return base + "#" + token, nil
}
