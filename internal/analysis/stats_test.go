package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func series(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		out[i] = fp(v)
	}
	return out
}

func TestAverageSkipsMissing(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
	assert.Equal(t, 0.0, Average([]*float64{nil, fp(math.NaN())}))
	assert.InDelta(t, 2.0, Average([]*float64{fp(1), nil, fp(3)}), 1e-9)
}

func TestStdDevIsPopulation(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(series(42)))
	assert.Equal(t, 0.0, StdDev(nil))
	assert.InDelta(t, 5.0, StdDev(series(65, 75)), 1e-9)
	assert.InDelta(t, 2.0, StdDev(series(2, 4, 4, 4, 5, 5, 7, 9)), 1e-9)
}

func TestCelsiusToFahrenheit(t *testing.T) {
	assert.Nil(t, CelsiusToFahrenheit(nil))
	assert.Nil(t, CelsiusToFahrenheit(fp(math.NaN())))

	f := CelsiusToFahrenheit(fp(0))
	require.NotNil(t, f)
	assert.Equal(t, 32.0, *f)

	f = CelsiusToFahrenheit(fp(100))
	require.NotNil(t, f)
	assert.Equal(t, 212.0, *f)
}
