package internal

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

var (
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	tldPattern     = regexp.MustCompile(`^[a-z]{2,63}$|^xn--[a-z0-9-]{1,59}$`)
)

// videoHosts are the hosts whose links are summarized
var videoHosts = []string{
	"youtube.com",
	"www.youtube.com",
	"m.youtube.com",
	"music.youtube.com",
	"youtu.be",
}

// ValidateURL checks that raw is a well-formed absolute http(s) URL.
// It performs no network calls and returns raw unchanged on success.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyInput
	}
	if trimmed != raw || strings.ContainsAny(raw, " \t\r\n") {
		return "", fmt.Errorf("%w: %q contains whitespace", ErrInvalidURL, raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidURL, raw)
	}
	if !validHost(u.Hostname()) {
		return "", fmt.Errorf("%w: %q has no valid host", ErrInvalidURL, raw)
	}
	if port := u.Port(); port != "" && strings.Trim(port, "0123456789") != "" {
		return "", fmt.Errorf("%w: %q has an invalid port", ErrInvalidURL, raw)
	}

	return raw, nil
}

// validHost accepts IP addresses, localhost and dotted names ending in a plausible TLD
func validHost(host string) bool {
	if host == "" {
		return false
	}
	if host == "localhost" || net.ParseIP(host) != nil {
		return true
	}

	labels := strings.Split(strings.ToLower(host), ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || len(label) > 63 || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		if strings.Trim(label, "abcdefghijklmnopqrstuvwxyz0123456789-") != "" {
			return false
		}
	}
	return tldPattern.MatchString(labels[len(labels)-1])
}

// IsVideoURL reports whether u points at a supported video-hosting site
func IsVideoURL(u string) bool {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return false
	}
	return slices.Contains(videoHosts, strings.ToLower(parsed.Hostname()))
}

// VideoID extracts the YouTube video ID from a watch, short, embed or youtu.be link
func VideoID(videoURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(videoURL))
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	host := strings.ToLower(u.Hostname())
	if !slices.Contains(videoHosts, host) {
		return "", fmt.Errorf("not a YouTube URL: %s", videoURL)
	}

	if v := u.Query().Get("v"); v != "" {
		return v, nil
	}

	if strings.Contains(u.Path, "/playlist") {
		return "", fmt.Errorf("playlist URLs are not supported: %s", videoURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := parts[len(parts)-1]
	if last == "" || (host != "youtu.be" && len(parts) == 1 && last == "watch") {
		return "", fmt.Errorf("could not extract video ID from URL: %s", videoURL)
	}
	return last, nil
}

// IsValidYouTubeID checks if a string looks like a valid YouTube video ID
func IsValidYouTubeID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// NormalizeArg turns a bare video ID into a watch URL; anything else is returned as is
func NormalizeArg(arg string) string {
	if IsValidYouTubeID(arg) {
		return "https://www.youtube.com/watch?v=" + arg
	}
	return arg
}

// IsLikelyCommand checks if a string looks like it might be a mistyped command
func IsLikelyCommand(arg string) bool {
	if strings.Contains(arg, "://") || strings.Contains(arg, ".") {
		return false
	}
	return len(arg) <= 10 && !IsValidYouTubeID(arg)
}
