package models

// Platform identifies the social network a SocialLink points to.
type Platform string

// Recognized platforms. A link that matches none of them has a nil Platform.
const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
)

// Pagination defaults for station listings.
const (
	DefaultPage        = 1
	DefaultPageLimit   = 50
	MaxPageLimit       = 100
	DefaultSearchLimit = 20
)

// Related-station recommendation bounds.
const (
	RelatedStationsLimit  = 6
	RelatedCityCandidates = 20
	RelatedGenreFactor    = 3
)
