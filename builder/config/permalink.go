package config

import "strings"

// MakePermalink joins base_url with a site-relative path.
// Directory-like paths get a trailing slash; the feed file and "" do not.
func (c *Config) MakePermalink(p string) string {
	base := c.BaseURL

	if p == "/" {
		if strings.HasSuffix(base, "/") {
			return base
		}
		return base + "/"
	}

	trailing := "/"
	if p == "" || strings.HasSuffix(p, "/") || (c.FeedFilename != "" && strings.HasSuffix(p, c.FeedFilename)) {
		trailing = ""
	}

	switch {
	case strings.HasSuffix(base, "/") && strings.HasPrefix(p, "/"):
		return base + p[1:] + trailing
	case strings.HasSuffix(base, "/") || strings.HasPrefix(p, "/"):
		return base + p + trailing
	default:
		return base + "/" + p + trailing
	}
}
