package puzzle

/*

Stock layout generation

Real deployments get their layouts from an image-segmentation
front end.  This generator stands in for it: given dimensions
and a seed it produces a well-formed layout deterministically,
which is what the storage samples, the CLI, and the tests all
build their sessions from.

Well-formed means: every rim-facing edge of the solved layout is
flat, every interior seam has one socket and one tab generated
consistently on both sides, and the two edges of a seam share a
color signature (so their similarity is 1.0).  Those are exactly
the guarantees the engine trusts its generator for and does not
re-validate.

*/

import (
	"math/rand"
)

// signatureLength is the number of tokens in a generated edge
// signature.  Both sides of a seam share one signature; flat
// edges carry none.
const signatureLength = 8

const signatureTokens = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate produces a layout of the given dimensions from the
// given seed.  The same arguments always produce the same
// layout.  If scramble is set, each piece is additionally given
// a random starting rotation and the piece list is shuffled, the
// way a freshly opened box would be.
func Generate(name string, width, height int, seed int64, scramble bool) (*Summary, error) {
	if width < MinSideLength || width > MaxSideLength {
		return nil, rangeError(WidthAttribute, width, MinSideLength, MaxSideLength)
	}
	if height < MinSideLength || height > MaxSideLength {
		return nil, rangeError(HeightAttribute, height, MinSideLength, MaxSideLength)
	}
	rng := rand.New(rand.NewSource(seed))

	// seam patterns and signatures, indexed by the cell on the
	// top/left side of the seam
	type seam struct {
		nearSide  EdgePattern // edge of the top/left piece
		signature string
	}
	vertical := make([]seam, width*height)   // seam to the right of each cell
	horizontal := make([]seam, width*height) // seam below each cell
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*width + col
			if col < width-1 {
				vertical[i] = seam{randomPattern(rng), randomSignature(rng)}
			}
			if row < height-1 {
				horizontal[i] = seam{randomPattern(rng), randomSignature(rng)}
			}
		}
	}

	pieces := make([]PieceSummary, 0, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*width + col
			ps := PieceSummary{
				ID:   PieceID(i + 1),
				Home: Position{Row: row, Col: col},
			}
			if col < width-1 {
				ps.Patterns[Right] = vertical[i].nearSide
				ps.Signatures[Right] = vertical[i].signature
			}
			if col > 0 {
				ps.Patterns[Left] = complementOf(vertical[i-1].nearSide)
				ps.Signatures[Left] = vertical[i-1].signature
			}
			if row < height-1 {
				ps.Patterns[Bottom] = horizontal[i].nearSide
				ps.Signatures[Bottom] = horizontal[i].signature
			}
			if row > 0 {
				ps.Patterns[Top] = complementOf(horizontal[i-width].nearSide)
				ps.Signatures[Top] = horizontal[i-width].signature
			}
			// edges not set above stay Flat with no signature,
			// which is the rim
			pieces = append(pieces, ps)
		}
	}

	if scramble {
		for i := range pieces {
			for turns := rng.Intn(4); turns > 0; turns-- {
				rotateSummaryClockwise(&pieces[i])
			}
		}
		rng.Shuffle(len(pieces), func(i, j int) {
			pieces[i], pieces[j] = pieces[j], pieces[i]
		})
	}

	return &Summary{Name: name, Width: width, Height: height, Pieces: pieces}, nil
}

// complementOf returns the pattern that mates with a seam
// pattern.  Seams are never flat.
func complementOf(p EdgePattern) EdgePattern {
	if p == Tab {
		return Socket
	}
	return Tab
}

func randomPattern(rng *rand.Rand) EdgePattern {
	if rng.Intn(2) == 0 {
		return Socket
	}
	return Tab
}

func randomSignature(rng *rand.Rand) string {
	sig := make([]byte, signatureLength)
	for i := range sig {
		sig[i] = signatureTokens[rng.Intn(len(signatureTokens))]
	}
	return string(sig)
}

// rotateSummaryClockwise applies one quarter turn to a piece
// summary, the same permutation the live piece uses.
func rotateSummaryClockwise(ps *PieceSummary) {
	ps.Patterns[Top], ps.Patterns[Right], ps.Patterns[Bottom], ps.Patterns[Left] =
		ps.Patterns[Left], ps.Patterns[Top], ps.Patterns[Right], ps.Patterns[Bottom]
	ps.Signatures[Top], ps.Signatures[Right], ps.Signatures[Bottom], ps.Signatures[Left] =
		ps.Signatures[Left], ps.Signatures[Top], ps.Signatures[Right], ps.Signatures[Bottom]
	ps.Rotation = (ps.Rotation + 90) % 360
}
