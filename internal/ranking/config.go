package ranking

// RankingConfig holds the boost weights and matching tolerances used by the Ranker.
type RankingConfig struct {
	// Legal-area boost: the n-th matched keyword group adds AreaBoost * AreaDecay^(n-1).
	AreaBoost float64 `yaml:"area_boost"` // default: 0.1
	AreaDecay float64 `yaml:"area_decay"` // default: 0.5

	// Added when the whole query phrase appears verbatim in the passage.
	PhraseBoost float64 `yaml:"phrase_boost"` // default: 0.15

	// Authority boosts per document-type tier.
	StatuteBoost  float64 `yaml:"statute_boost"`  // default: 0.15
	CaseLawBoost  float64 `yaml:"case_law_boost"` // default: 0.10
	ContractBoost float64 `yaml:"contract_boost"` // default: 0.05 (templates and clauses)

	// Maximum edit distance for fuzzy legal-area and document-type filters.
	FuzzyDistance int `yaml:"fuzzy_distance"` // default: 2
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		AreaBoost:     0.1,
		AreaDecay:     0.5,
		PhraseBoost:   0.15,
		StatuteBoost:  0.15,
		CaseLawBoost:  0.10,
		ContractBoost: 0.05,
		FuzzyDistance: 2,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	defaults := DefaultRankingConfig()

	if c.AreaBoost == 0 {
		c.AreaBoost = defaults.AreaBoost
	}
	if c.AreaDecay == 0 {
		c.AreaDecay = defaults.AreaDecay
	}
	if c.PhraseBoost == 0 {
		c.PhraseBoost = defaults.PhraseBoost
	}
	if c.StatuteBoost == 0 {
		c.StatuteBoost = defaults.StatuteBoost
	}
	if c.CaseLawBoost == 0 {
		c.CaseLawBoost = defaults.CaseLawBoost
	}
	if c.ContractBoost == 0 {
		c.ContractBoost = defaults.ContractBoost
	}
	if c.FuzzyDistance == 0 {
		c.FuzzyDistance = defaults.FuzzyDistance
	}
}
