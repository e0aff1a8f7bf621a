package webhook

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/a1zap/webhook-relay/internal/delivery"
)

const (
	easterEggTrigger = "a1"
	easterEggMessage = "🔥 Check out our viral content across all platforms!"

	easterEggInstagramURL = "https://www.instagram.com/reel/DQI4QE8jHiL/"
	easterEggTikTokURL    = "https://www.tiktok.com/@brandneweats/video/7546112444503035144"
	easterEggYouTubeURL   = "https://www.youtube.com/shorts/ToobPQS6_ZI"
)

// isEasterEgg matches the trigger against the trimmed message with case
// folding, so "A1" and " a1 " hit but "a1 please" does not.
func isEasterEgg(content string, caser cases.Caser) bool {
	return caser.String(strings.TrimSpace(content)) == easterEggTrigger
}

func easterEggBlocks() []delivery.RichContentBlock {
	return []delivery.RichContentBlock{
		{
			Type:  delivery.BlockTypeSocialShare,
			Data:  delivery.BlockData{Platform: "instagram", URL: easterEggInstagramURL},
			Order: 0,
		},
		{
			Type:  delivery.BlockTypeSocialShare,
			Data:  delivery.BlockData{Platform: "tiktok", URL: easterEggTikTokURL},
			Order: 1,
		},
		{
			Type:  delivery.BlockTypeSocialShare,
			Data:  delivery.BlockData{Platform: "youtube", URL: easterEggYouTubeURL},
			Order: 2,
		},
	}
}
