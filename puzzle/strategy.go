package puzzle

/*

Matching strategies

A strategy decides whether a candidate piece may occupy a cell
given the pieces already placed around it.  Strategies only read
board and piece state; the session performs the actual mutation
after the strategy accepts.  Like puzzle geometries elsewhere in
this family of programs, strategies are registered by name so a
session can be reconfigured at runtime without touching the
board, piece, or history code.

*/

// A Strategy is a pluggable placement-validity predicate.
type Strategy interface {
	// Name returns the registered name of the strategy.
	Name() string
	// validPlacement reports whether the piece may occupy the
	// cell.  It must not mutate board or piece state.
	validPlacement(b *board, p *piece, pos Position) bool
}

// Names of the built-in strategies.
const (
	ExactMatchStrategyName      = "exact-match"
	ColorSimilarityStrategyName = "color-similarity"
	HybridStrategyName          = "hybrid"
)

// DefaultSimilarityThreshold is the color-similarity score a
// non-flat edge pair must meet when a color-checking strategy is
// in force.
const DefaultSimilarityThreshold = 0.7

// The registry of known strategies.  Registration is expected to
// be done at initialization time, but the world doesn't end if
// you add new strategies later.
var knownStrategies = map[string]func() Strategy{
	"":                          func() Strategy { return ExactMatch() },
	ExactMatchStrategyName:      func() Strategy { return ExactMatch() },
	ColorSimilarityStrategyName: func() Strategy { return ColorSimilarity(DefaultSimilarityThreshold) },
	HybridStrategyName:          func() Strategy { return Hybrid(DefaultSimilarityThreshold) },
}

// LookupStrategy is how people look up strategies.  The empty
// name yields the default (exact-match) strategy.  There's a
// boolean return value to tell you if the name was registered,
// similar to a map lookup.
func LookupStrategy(name string) (Strategy, bool) {
	maker, ok := knownStrategies[name]
	if !ok {
		return nil, false
	}
	return maker(), true
}

// RegisterStrategy is how you tell the module about new
// strategies.  The name must be non-empty and not already taken.
func RegisterStrategy(name string, maker func() Strategy) error {
	if name == "" {
		return Error{
			Scope:     ArgumentScope,
			Structure: AttributeStructure,
			Attribute: StrategyAttribute,
			Condition: EmptyArgumentCondition,
		}
	}
	if _, ok := knownStrategies[name]; ok {
		return Error{
			Scope:     ArgumentScope,
			Structure: AttributeValueStructure,
			Attribute: StrategyAttribute,
			Condition: GeneralCondition,
			Values:    ErrorData{name, "already registered"},
		}
	}
	knownStrategies[name] = maker
	return nil
}

/*

Exact matching

*/

// exactMatch accepts a placement when, for every direction with
// a placed neighbor, the candidate's edge pattern mates with the
// neighbor's facing edge.  Directions with no neighbor are never
// checked against anything, so the rim of the board does not by
// itself require flat edges; a well-formed generator guarantees
// that instead.
type exactMatch struct{}

// ExactMatch returns the pattern-only matching strategy.
func ExactMatch() Strategy {
	return exactMatch{}
}

func (exactMatch) Name() string {
	return ExactMatchStrategyName
}

func (exactMatch) validPlacement(b *board, p *piece, pos Position) bool {
	for d := Top; d < directionCount; d++ {
		nid, ok := b.neighborAt(pos, d)
		if !ok {
			continue
		}
		facing := b.piece(nid).edges[d.Opposite()]
		if !CanConnect(p.edges[d].Pattern, facing.Pattern) {
			return false
		}
	}
	return true
}

/*

Color-similarity matching

*/

// colorSimilarity first requires exact pattern matching, then
// additionally requires every non-flat edge with a placed
// neighbor to meet the similarity threshold against the
// neighbor's facing signature.
type colorSimilarity struct {
	threshold float64
}

// ColorSimilarity returns the color-checking strategy with the
// given similarity threshold.
func ColorSimilarity(threshold float64) Strategy {
	return colorSimilarity{threshold: threshold}
}

func (colorSimilarity) Name() string {
	return ColorSimilarityStrategyName
}

func (cs colorSimilarity) validPlacement(b *board, p *piece, pos Position) bool {
	if !(exactMatch{}).validPlacement(b, p, pos) {
		return false
	}
	return cs.colorsAgree(b, p, pos)
}

// colorsAgree does the similarity half of the check, shared with
// the hybrid strategy.  Flat edges carry no color and are
// skipped.
func (cs colorSimilarity) colorsAgree(b *board, p *piece, pos Position) bool {
	for d := Top; d < directionCount; d++ {
		if p.edges[d].Pattern == Flat {
			continue
		}
		nid, ok := b.neighborAt(pos, d)
		if !ok {
			continue
		}
		facing := b.piece(nid).edges[d.Opposite()]
		if signatureSimilarity(p.edges[d].Signature, facing.Signature) < cs.threshold {
			return false
		}
	}
	return true
}

/*

Hybrid matching

*/

// hybrid requires exact pattern matching always, and the color
// check only for interior pieces.  Corner and border pieces have
// flat edges to orient by, so geometry alone is considered
// trustworthy for them.
type hybrid struct {
	color colorSimilarity
}

// Hybrid returns the hybrid strategy with the given similarity
// threshold for interior pieces.
func Hybrid(threshold float64) Strategy {
	return hybrid{color: colorSimilarity{threshold: threshold}}
}

func (hybrid) Name() string {
	return HybridStrategyName
}

func (h hybrid) validPlacement(b *board, p *piece, pos Position) bool {
	if !(exactMatch{}).validPlacement(b, p, pos) {
		return false
	}
	if !p.isInterior() {
		return true
	}
	return h.color.colorsAgree(b, p, pos)
}
