package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	groups := c.Groups()
	require.Len(t, groups, 5)
	cuisines := make([]string, 0, len(groups))
	for _, g := range groups {
		cuisines = append(cuisines, g.Cuisine)
	}
	assert.Equal(t, []string{"General", "Indian", "Asian", "Italian", "Snacks & Drinks"}, cuisines)
	assert.Len(t, c.All(), 33)

	pizza, ok := c.Find("Pizza Slice")
	require.True(t, ok)
	assert.Equal(t, 285, pizza.Calories)
}

func TestLookup(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	cat, err := c.Lookup("burger")
	require.NoError(t, err)
	assert.Equal(t, "Burger", cat.Name)

	_, err = c.Lookup("Tacos")
	require.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`[{"cuisine":"A","items":[{"name":"X","calories":1}]},{"cuisine":"B","items":[{"name":"X","calories":2}]}]`))
	require.Error(t, err)
}
