package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	require.Len(t, c.Services, 5)
	require.Len(t, c.Governorates, 5)

	assert.Equal(t, []string{"صحة", "تعليم", "غذاء", "مياه", "حماية"}, c.Services.Values())
	assert.Equal(t, []string{"حلب", "إدلب", "درعا", "حمص", "دمشق"}, c.Governorates.Values())

	for _, o := range c.Services {
		assert.Equal(t, o.Value, o.Label)
	}
}

func TestOptionSetKnown(t *testing.T) {
	set := FromValues([]string{"صحة", "تعليم"})

	assert.True(t, set.Known("صحة"))
	assert.True(t, set.Known("تعليم"))
	assert.False(t, set.Known("غذاء"))
	assert.False(t, set.Known(" صحة "))
	assert.False(t, set.Known(""))
}

func TestFromValuesSkipsBlankEntries(t *testing.T) {
	set := FromValues([]string{" حلب ", "", "   ", "حمص"})

	require.Len(t, set, 2)
	assert.Equal(t, []string{"حلب", "حمص"}, set.Values())
}

func TestNewFallsBackToDefaults(t *testing.T) {
	c := New(nil, []string{"حلب"})

	assert.Len(t, c.Services, 5)
	require.Len(t, c.Governorates, 1)
	assert.Equal(t, "حلب", c.Governorates[0].Value)
}
