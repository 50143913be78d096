package ingestion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleDecodesSourceFormat(t *testing.T) {
	raw := `[{"title":"Rates","date":"2015-03-01","keywords":"bank, rates","article":"the central bank","summary":"rates up"}]`

	var articles []Article
	require.NoError(t, json.Unmarshal([]byte(raw), &articles))
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "the central bank", a.Body)
	assert.Equal(t, "the central bank", a.Value("article"))
	assert.Equal(t, "Rates", a.Value("title"))
	assert.Equal(t, "2015-03-01", a.Value("date"))
	assert.Equal(t, "bank, rates", a.Value("keywords"))
	assert.Equal(t, "rates up", a.Value("summary"))
	assert.Empty(t, a.Value("author"))
}

func TestIsField(t *testing.T) {
	for _, f := range Fields {
		assert.True(t, IsField(f.Name))
	}
	assert.False(t, IsField("author"))
	assert.True(t, IsField(BodyField))
}
