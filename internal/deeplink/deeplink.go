// Package deeplink formats the tg:// links delivered to launched instances.
package deeplink

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrNoAppName is returned by Build when Params carries no app name.
	ErrNoAppName = errors.New("app name is required")
	// ErrInvalidAppName is returned for names that are not a bot username.
	ErrInvalidAppName = errors.New("invalid app name")
)

var domainPattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,64}$`)

// Params are the caller-supplied link inputs.
type Params struct {
	AppName    string `json:"app_name"`
	AppVariant string `json:"app_type,omitempty"`
	RefToken   string `json:"ref_link,omitempty"`
	Shuffle    bool   `json:"shuffle,omitempty"`
}

// Build returns the resolve link for p.
func Build(p Params) (string, error) {
	domain := strings.TrimPrefix(strings.TrimSpace(p.AppName), "@")
	if domain == "" {
		return "", ErrNoAppName
	}
	if !domainPattern.MatchString(domain) {
		return "", fmt.Errorf("%w %q", ErrInvalidAppName, p.AppName)
	}

	q := url.Values{}
	q.Set("domain", domain)
	if variant := strings.TrimSpace(p.AppVariant); variant != "" {
		q.Set("appname", variant)
	}
	if ref := refValue(p.RefToken); ref != "" {
		q.Set("startapp", ref)
	}
	return "tg://resolve?" + q.Encode(), nil
}

// refValue accepts either a bare start parameter or a full t.me / tg:// link
// and returns the start parameter.
func refValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "tg://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, key := range []string{"startapp", "start"} {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return ""
}

// ParseShuffle interprets the persisted shuffle flag ("yes"/"no").
func ParseShuffle(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "y", "true", "1", "on":
		return true
	default:
		return false
	}
}
