// Package slug builds URL-safe identifiers from display names and classifies
// social-network URLs.
package slug

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/voyagen/radiodir/internal/models"
)

// MaxStationLen caps derived station slugs.
const MaxStationLen = 250

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases s, strips combining diacritical marks (U+0300..U+036F)
// after canonical decomposition, collapses every run outside [a-z0-9] into a
// single hyphen and trims hyphens at both ends.
func Make(s string) string {
	s = norm.NFD.String(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x0300 && r <= 0x036f {
			continue
		}
		b.WriteRune(r)
	}

	out := reNonAlnum.ReplaceAllString(b.String(), "-")
	return strings.Trim(out, "-")
}

// Station derives a station slug: Make, then truncated to MaxStationLen.
// Truncation happens after trimming, so a cut can leave a trailing hyphen;
// existing slugs in the catalog were derived this way.
func Station(name string) string {
	s := Make(name)
	if len(s) > MaxStationLen {
		s = s[:MaxStationLen]
	}
	return s
}

// DetectPlatform classifies a social URL by substring. Order matters:
// the first match wins.
func DetectPlatform(url string) *models.Platform {
	lower := strings.ToLower(url)
	var p models.Platform
	switch {
	case strings.Contains(lower, "instagram"):
		p = models.PlatformInstagram
	case strings.Contains(lower, "facebook"):
		p = models.PlatformFacebook
	case strings.Contains(lower, "twitter"), strings.Contains(lower, "x.com"):
		p = models.PlatformTwitter
	case strings.Contains(lower, "youtube"):
		p = models.PlatformYouTube
	case strings.Contains(lower, "tiktok"):
		p = models.PlatformTikTok
	default:
		return nil
	}
	return &p
}
