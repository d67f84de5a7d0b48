package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		text string
		want string
	}{
		{"", "New Chat"},
		{"When should I sow PADDY?", "🌾 Rice Cultivation"},
		{"wheat rust", "🌾 Wheat Farming"},
		{"Is my soil too wet for tomatoes?", "🍅 Tomato Growing"},
		{"aphids are a pest", "🐛 Pest Management"},
		{"Drip irrigation cost", "💧 Water Management"},
		{"Which crop next season", "🌿 Crop Planning"},
		{"Climate outlook", "🌤️ Weather Advice"},
		{"hello there", "hello there"},
		{"namaste my good friend again", "namaste my good frie..."},
		{"a b c d e", "a b c d"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Title(tt.text))
		})
	}
}

func TestLoadRulesEmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRulesPrependsTopics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `gap = "45m"

[[topics]]
keywords = ["maize", "corn"]
label = "Maize"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, rules.Gap)
	assert.Equal(t, "Maize", rules.Title("corn and soil"))
	assert.Equal(t, "🌾 Wheat Farming", rules.Title("wheat"))
}

func TestLoadRulesReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `replace = true

[[topics]]
keywords = ["goat"]
label = "Livestock"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionGap, rules.Gap)
	assert.Len(t, rules.Topics, 1)
	assert.Equal(t, "wheat", rules.Title("wheat"))
}

func TestLoadRulesInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad_gap.toml":  `gap = "soon"`,
		"neg_gap.toml":  `gap = "-1m"`,
		"no_label.toml": "[[topics]]\nkeywords = [\"x\"]\n",
		"not_toml.toml": "gap = ",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := LoadRules(path)
		assert.Error(t, err, name)
	}

	_, err := LoadRules(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
