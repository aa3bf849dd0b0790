// Package scoring maps wellness assessment scores to qualitative bands and
// builds the per-domain breakdown shown in result emails. It is intentionally
// dependency-free: it imports nothing from internal/ and can be tested without
// any network or database.
package scoring

import (
	"sort"
	"strconv"
)

// ─── CONSTANTS ────────────────────────────────────────────────────────────────

// Overall thresholds apply to the whole-assessment total. Lower bounds are
// inclusive: a score exactly on a boundary takes the higher band.
const (
	overallThrivingMin       = 252
	overallBalancedMin       = 168
	overallNeedsAttentionMin = 84
)

// Domain thresholds apply to a single wellness domain sub-score.
const (
	domainThrivingMin       = 18
	domainBalancedMin       = 12
	domainNeedsAttentionMin = 6
)

// Pseudo-domains that appear in domainScores but are not wellness dimensions.
const (
	AttentionCheckDomain = "Attention Check"
	OverallDomain        = "Overall Wellness"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Band is the four-bucket qualitative label.
type Band string

const (
	BandThriving       Band = "Thriving"
	BandBalanced       Band = "Balanced"
	BandNeedsAttention Band = "Needs Attention"
	BandCritical       Band = "Critical"
)

// Display colors for each band, used inline in email HTML.
const (
	ColorGreen  = "#2e7d32"
	ColorBlue   = "#1565c0"
	ColorOrange = "#ef6c00"
	ColorRed    = "#c62828"
)

// Interpretation is a band plus the color it renders in.
type Interpretation struct {
	Band  Band
	Color string
}

var (
	thriving       = Interpretation{Band: BandThriving, Color: ColorGreen}
	balanced       = Interpretation{Band: BandBalanced, Color: ColorBlue}
	needsAttention = Interpretation{Band: BandNeedsAttention, Color: ColorOrange}
	critical       = Interpretation{Band: BandCritical, Color: ColorRed}
)

// DomainResult is one row of the per-domain breakdown.
type DomainResult struct {
	Name           string
	Score          float64
	Interpretation Interpretation
	Description    string // empty when the domain has no entry in the table
}

// ─── CORE FUNCTIONS ───────────────────────────────────────────────────────────

// OverallInterpretation classifies a whole-assessment total.
//
//	>= 252  Thriving         green
//	>= 168  Balanced         blue
//	>=  84  Needs Attention  orange
//	 <  84  Critical         red
func OverallInterpretation(score float64) Interpretation {
	return classify(score, overallThrivingMin, overallBalancedMin, overallNeedsAttentionMin)
}

// DomainInterpretation classifies a single domain sub-score.
//
//	>= 18  Thriving         green
//	>= 12  Balanced         blue
//	>=  6  Needs Attention  orange
//	 <  6  Critical         red
func DomainInterpretation(score float64) Interpretation {
	return classify(score, domainThrivingMin, domainBalancedMin, domainNeedsAttentionMin)
}

func classify(score, thrivingMin, balancedMin, needsAttentionMin float64) Interpretation {
	switch {
	case score >= thrivingMin:
		return thriving
	case score >= balancedMin:
		return balanced
	case score >= needsAttentionMin:
		return needsAttention
	default:
		return critical
	}
}

// DomainResults filters out the pseudo-domains and annotates every remaining
// domain with its interpretation and description.
//
// Domains listed in the description table come first in table order; any
// other domain follows, sorted by name, so the email layout is deterministic.
func DomainResults(scores map[string]float64) []DomainResult {
	out := make([]DomainResult, 0, len(scores))
	for name, score := range scores {
		if name == AttentionCheckDomain || name == OverallDomain {
			continue
		}
		desc, _ := DomainDescription(name)
		out = append(out, DomainResult{
			Name:           name,
			Score:          score,
			Interpretation: DomainInterpretation(score),
			Description:    desc,
		})
	}

	sort.Slice(out, func(a, b int) bool {
		ra, rb := domainRank(out[a].Name), domainRank(out[b].Name)
		if ra != rb {
			return ra < rb
		}
		return out[a].Name < out[b].Name
	})

	return out
}

// FormatScore renders a score the way the assessment front-end shows it:
// integers without a decimal point, fractions with the shortest exact form.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
