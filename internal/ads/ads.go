// Package ads splices AdSense ad units into article HTML at fixed
// fractional positions through the content.
package ads

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nexustopic/autoblog/internal/config"
	"github.com/nexustopic/autoblog/internal/logger"
)

// Block-level elements that count as content positions.
const blockSelector = "p, h2, h3, ul, ol"

// CreateAdCode renders one AdSense ad unit.
func CreateAdCode(clientID, slotID, format string) string {
	return fmt.Sprintf(`<div class="adsense-ad" style="text-align:center; margin: 30px 0;">
    <script async src="https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js?client=%s"
        crossorigin="anonymous"></script>
    <ins class="adsbygoogle"
        style="display:block"
        data-ad-client="%s"
        data-ad-slot="%s"
        data-ad-format="%s"
        data-full-width-responsive="true"></ins>
    <script>
        (adsbygoogle = window.adsbygoogle || []).push({});
    </script>
</div>`, clientID, clientID, slotID, format)
}

type insertionPoints struct {
	AfterIntro       int
	MidContent       int
	BeforeConclusion int
}

// findInsertionPoints computes the three ad positions over a block count:
// just past the intro, the middle, and 85% through the content.
func findInsertionPoints(totalBlocks int) insertionPoints {
	afterIntro := totalBlocks / 4
	if afterIntro > 2 {
		afterIntro = 2
	}

	return insertionPoints{
		AfterIntro:       afterIntro,
		MidContent:       totalBlocks / 2,
		BeforeConclusion: int(float64(totalBlocks) * 0.85),
	}
}

// InsertAds places up to three ad units after the blocks at the computed
// positions, highest index first so earlier indices stay valid. Articles
// with fewer than three blocks are returned unchanged.
func InsertAds(html string, cfg config.AdSenseConfig) (string, int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Error("Failed to parse article HTML", "error", err)
		return html, 0
	}

	blocks := doc.Find(blockSelector)
	total := blocks.Length()
	if total < 3 {
		logger.Warn("Article too short for ad insertion", "blocks", total)
		return html, 0
	}

	points := findInsertionPoints(total)
	logger.Debug("Insertion points calculated",
		"after_intro", points.AfterIntro,
		"mid_content", points.MidContent,
		"before_conclusion", points.BeforeConclusion)

	type placement struct {
		index int
		code  string
	}
	var placements []placement

	if slot, ok := cfg.Slots["sidebar"]; ok {
		placements = append(placements, placement{points.BeforeConclusion, CreateAdCode(cfg.ClientID, slot, "auto")})
	}
	if slot, ok := cfg.Slots["in_article"]; ok {
		placements = append(placements, placement{points.MidContent, CreateAdCode(cfg.ClientID, slot, "fluid")})
	}
	if slot, ok := cfg.Slots["header"]; ok {
		placements = append(placements, placement{points.AfterIntro, CreateAdCode(cfg.ClientID, slot, "auto")})
	}

	// Highest index first.
	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			if placements[j].index > placements[i].index {
				placements[i], placements[j] = placements[j], placements[i]
			}
		}
	}

	inserted := 0
	for _, p := range placements {
		if p.index < total {
			blocks.Eq(p.index).AfterHtml(p.code)
			inserted++
		}
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		logger.Error("Failed to serialize article HTML", "error", err)
		return html, 0
	}

	logger.Info("Ad units inserted", "count", inserted)
	return out, inserted
}

// ValidateConfig checks the ad configuration. A config without slots is
// valid, it just inserts nothing.
func ValidateConfig(cfg config.AdSenseConfig) bool {
	if cfg.ClientID == "" {
		logger.Error("Missing AdSense client ID")
		return false
	}
	if !strings.HasPrefix(cfg.ClientID, "ca-pub-") {
		logger.Error("Invalid AdSense client ID format", "client_id", cfg.ClientID)
		return false
	}
	if len(cfg.Slots) == 0 {
		logger.Warn("No ad slots configured")
	}
	return true
}

// RemoveAds strips previously inserted ad containers and loader scripts.
func RemoveAds(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("div.adsense-ad").Remove()
	doc.Find(`script[src*="adsbygoogle"]`).Remove()

	out, err := doc.Find("body").Html()
	if err != nil {
		return html
	}
	return out
}
