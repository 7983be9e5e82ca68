package ranking

import (
	"math"
	"strings"

	"github.com/hyperjump/jurisearch/internal/models"
)

// areaGroup is a legal area and the content keywords that signal it.
type areaGroup struct {
	area     string
	keywords []string
}

// areaGroups is ordered; the order fixes which group counts as the first match.
var areaGroups = []areaGroup{
	{area: models.AreaEmployment, keywords: []string{"employment", "employee", "employer", "labour", "labor", "wage", "dismissal", "workplace"}},
	{area: models.AreaContract, keywords: []string{"contract", "agreement", "obligation", "breach", "consideration", "covenant"}},
	{area: models.AreaLiability, keywords: []string{"liability", "liable", "indemn", "warranty", "damages", "negligence"}},
	{area: models.AreaIntellectualProperty, keywords: []string{"intellectual property", "patent", "copyright", "trademark", "licence", "license", "confidential"}},
	{area: models.AreaTermination, keywords: []string{"termination", "terminate", "notice period", "severance", "expiry"}},
}

func (g areaGroup) matches(content string) bool {
	for _, kw := range g.keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

// groupFor returns the keyword group for a legal area label.
func groupFor(area string) (areaGroup, bool) {
	for _, g := range areaGroups {
		if g.area == area {
			return g, true
		}
	}
	return areaGroup{}, false
}

// AreaBooster rewards passages whose content touches several legal areas, with
// diminishing returns per additional group.
type AreaBooster struct {
	base  float64
	decay float64
}

func (b *AreaBooster) Name() string { return "legal_area" }

func (b *AreaBooster) Boost(ctx *ScoringContext) float64 {
	boost := 0.0
	matched := 0
	for _, g := range areaGroups {
		if g.matches(ctx.Content) {
			boost += b.base * math.Pow(b.decay, float64(matched))
			matched++
		}
	}
	return boost
}

// PhraseBooster rewards passages that contain the whole query phrase verbatim.
type PhraseBooster struct {
	boost float64
}

func (b *PhraseBooster) Name() string { return "phrase" }

func (b *PhraseBooster) Boost(ctx *ScoringContext) float64 {
	if ctx.Query == "" || !strings.Contains(ctx.Content, ctx.Query) {
		return 0
	}
	return b.boost
}

// AuthorityBooster ranks statutes above case law above contracts and clauses.
type AuthorityBooster struct {
	byTier map[int]float64
}

func (b *AuthorityBooster) Name() string { return "authority" }

func (b *AuthorityBooster) Boost(ctx *ScoringContext) float64 {
	return b.byTier[models.AuthorityTier(ctx.Passage.DocumentType)]
}

// DefaultBoosters builds the area, phrase, and authority boosters from cfg.
func DefaultBoosters(cfg *RankingConfig) []Booster {
	return []Booster{
		&AreaBooster{base: cfg.AreaBoost, decay: cfg.AreaDecay},
		&PhraseBooster{boost: cfg.PhraseBoost},
		&AuthorityBooster{byTier: map[int]float64{
			models.AuthorityTier(models.DocTypeStatute):          cfg.StatuteBoost,
			models.AuthorityTier(models.DocTypeCaseLaw):          cfg.CaseLawBoost,
			models.AuthorityTier(models.DocTypeContractTemplate): cfg.ContractBoost,
		}},
	}
}
