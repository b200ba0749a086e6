package service

import (
	"net/url"
	"strings"
)

// DefaultAvatarBaseURL generates a deterministic avatar per seed.
const DefaultAvatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg"

// AvatarURL returns the default profile image for username.
func AvatarURL(baseURL, username string) string {
	if baseURL == "" {
		baseURL = DefaultAvatarBaseURL
	}
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + "seed=" + url.QueryEscape(username)
}
