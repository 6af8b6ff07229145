package labels

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/tsgen/internal/domain"
)

func TestGenerate_Sequence(t *testing.T) {
	out, err := Generate(nil, domain.LabelSpec{Kind: KindSequence, Count: 3, Prefix: "store"})
	require.NoError(t, err)
	assert.Equal(t, []string{"store_1", "store_2", "store_3"}, out)
}

func TestGenerate_CityIsSeeded(t *testing.T) {
	spec := domain.LabelSpec{Kind: KindCity, Count: 5}
	a, err := Generate(rand.New(rand.NewPCG(1, 2)), spec)
	require.NoError(t, err)
	b, err := Generate(rand.New(rand.NewPCG(1, 2)), spec)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 5)

	_, err = Generate(rand.New(rand.NewPCG(1, 2)), domain.LabelSpec{Kind: KindCity, Count: 1000})
	assert.Error(t, err)
}

func TestGenerate_FakerUnique(t *testing.T) {
	out, err := Generate(nil, domain.LabelSpec{Kind: KindFakerName, Count: 10, Prefix: "customer"})
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, v := range out {
		assert.False(t, seen[v])
		seen[v] = true
		assert.Contains(t, v, "customer_")
	}
}

func TestGenerate_Rejects(t *testing.T) {
	_, err := Generate(nil, domain.LabelSpec{Kind: "nope", Count: 1})
	assert.Error(t, err)
	_, err = Generate(nil, domain.LabelSpec{Kind: KindSequence, Count: 0})
	assert.Error(t, err)
}

func TestGenerate_FakerIsSeeded(t *testing.T) {
	for _, kind := range []string{KindFakerWord, KindFakerName} {
		spec := domain.LabelSpec{Kind: kind, Count: 4, Prefix: "x"}
		a, err := Generate(rand.New(rand.NewPCG(11, 3)), spec)
		require.NoError(t, err)
		b, err := Generate(rand.New(rand.NewPCG(11, 3)), spec)
		require.NoError(t, err)
		assert.Equal(t, a, b, kind)
	}
}
