// Package labels synthesizes dimension values for scenarios that declare a
// dimension by size instead of listing its values.
package labels

import (
	"errors"
	"fmt"
	mathrand "math/rand"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/go-faker/faker/v4"

	"github.com/mmrzaf/tsgen/internal/domain"
)

const (
	KindSequence  = "sequence"
	KindCity      = "city"
	KindFakerWord = "faker_word"
	KindFakerName = "faker_name"
)

const maxAttemptsPerLabel = 50

var cities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Austin", "Jacksonville", "Fort Worth", "Columbus", "Charlotte",
	"San Francisco", "Indianapolis", "Seattle", "Denver", "Washington",
	"Boston", "Nashville", "Detroit", "Portland", "Las Vegas",
	"London", "Paris", "Tokyo", "Berlin", "Madrid",
	"Rome", "Amsterdam", "Vienna", "Prague", "Barcelona",
	"Munich", "Milan", "Stockholm", "Copenhagen", "Oslo",
}

// fakerMu guards faker's package-level random source.
var fakerMu sync.Mutex

// pcgSource feeds a math/rand/v2 generator to faker, which takes a math/rand Source.
type pcgSource struct{ rng *rand.Rand }

func (s pcgSource) Int63() int64 { return int64(s.rng.Uint64() >> 1) }
func (s pcgSource) Seed(int64)   {}

var _ mathrand.Source = pcgSource{}

// Generate returns spec.Count unique labels, reproducible from rng. A nil rng
// draws from a fresh random stream.
func Generate(rng *rand.Rand, spec domain.LabelSpec) ([]string, error) {
	if spec.Count <= 0 {
		return nil, errors.New("label count must be > 0")
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	prefix := spec.Prefix

	switch spec.Kind {
	case KindSequence:
		if prefix == "" {
			prefix = "item"
		}
		out := make([]string, spec.Count)
		for i := range out {
			out[i] = fmt.Sprintf("%s_%d", prefix, i+1)
		}
		return out, nil
	case KindCity:
		if spec.Count > len(cities) {
			return nil, fmt.Errorf("city labels: count %d exceeds %d known cities", spec.Count, len(cities))
		}
		perm := rng.Perm(len(cities))
		out := make([]string, spec.Count)
		for i := range out {
			out[i] = withPrefix(prefix, cities[perm[i]])
		}
		return out, nil
	case KindFakerWord:
		return fakerLabels(rng, spec.Count, func() string { return withPrefix(prefix, faker.Word()) })
	case KindFakerName:
		return fakerLabels(rng, spec.Count, func() string { return withPrefix(prefix, faker.Name()) })
	default:
		return nil, fmt.Errorf("unknown label kind: %s", spec.Kind)
	}
}

func fakerLabels(rng *rand.Rand, count int, next func() string) ([]string, error) {
	fakerMu.Lock()
	defer fakerMu.Unlock()
	faker.SetRandomSource(pcgSource{rng: rng})
	return unique(count, next)
}

func withPrefix(prefix, s string) string {
	if prefix == "" {
		return s
	}
	return prefix + "_" + strings.ReplaceAll(strings.ToLower(s), " ", "_")
}

func unique(count int, next func() string) ([]string, error) {
	seen := make(map[string]bool, count)
	out := make([]string, 0, count)
	for attempts := 0; len(out) < count; attempts++ {
		if attempts >= count*maxAttemptsPerLabel {
			return nil, fmt.Errorf("could not draw %d unique labels", count)
		}
		v := next()
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}
