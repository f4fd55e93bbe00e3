package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const defaultHashDimension = 64

// Hash is a local feature-hashing embedder. Each token is hashed with
// FNV-1a into one of Dimension buckets and the counts are L2-normalized,
// so texts sharing words land near each other in vector space. It is
// deterministic and fully offline.
type Hash struct {
	dim int
}

func NewHash(dim int) *Hash {
	if dim <= 0 {
		dim = defaultHashDimension
	}
	return &Hash{dim: dim}
}

func (h *Hash) Name() string {
	return "hash"
}

func (h *Hash) Dimension() int {
	return h.dim
}

func (h *Hash) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dim)

	for _, tok := range tokenize(text) {
		f := fnv.New32a()
		f.Write([]byte(tok))
		vec[int(f.Sum32()%uint32(h.dim))]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := 1 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * scale)
		}
	}
	return vec, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
