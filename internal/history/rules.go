package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultSessionGap is the pause between two messages that starts a new session.
const DefaultSessionGap = time.Hour

// DefaultTitle is used when a session's first message has no text.
const DefaultTitle = "New Chat"

const (
	titleWords    = 4
	titleMaxRunes = 20
)

// Topic maps keywords found in a session's first message to a display title.
type Topic struct {
	Keywords []string `toml:"keywords"`
	Label    string   `toml:"label"`
}

// Rules controls how a flat history is split into sessions and how sessions are titled.
type Rules struct {
	Gap    time.Duration
	Topics []Topic
}

// DefaultRules returns the built-in farming topics, checked in order.
func DefaultRules() Rules {
	return Rules{
		Gap: DefaultSessionGap,
		Topics: []Topic{
			{Keywords: []string{"rice", "paddy"}, Label: "🌾 Rice Cultivation"},
			{Keywords: []string{"wheat"}, Label: "🌾 Wheat Farming"},
			{Keywords: []string{"tomato"}, Label: "🍅 Tomato Growing"},
			{Keywords: []string{"pest", "disease"}, Label: "🐛 Pest Management"},
			{Keywords: []string{"soil"}, Label: "🌱 Soil Management"},
			{Keywords: []string{"water", "irrigation"}, Label: "💧 Water Management"},
			{Keywords: []string{"fertilizer", "nutrient"}, Label: "🧪 Fertilization"},
			{Keywords: []string{"plant", "crop"}, Label: "🌿 Crop Planning"},
			{Keywords: []string{"weather", "climate"}, Label: "🌤️ Weather Advice"},
		},
	}
}

// Title derives a session title from the text of its first message.
func (r Rules) Title(text string) string {
	if text == "" {
		return DefaultTitle
	}

	lower := strings.ToLower(text)
	for _, topic := range r.Topics {
		for _, kw := range topic.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return topic.Label
			}
		}
	}

	words := strings.Split(text, " ")
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	title := strings.Join(words, " ")
	if runes := []rune(title); len(runes) > titleMaxRunes {
		return string(runes[:titleMaxRunes]) + "..."
	}
	return title
}

// rulesFile is the on-disk TOML shape of Rules.
//
//	gap = "45m"
//
//	[[topics]]
//	keywords = ["maize", "corn"]
//	label = "🌽 Maize"
type rulesFile struct {
	Gap     string  `toml:"gap"`
	Replace bool    `toml:"replace"`
	Topics  []Topic `toml:"topics"`
}

// LoadRules reads a TOML rules file. Topics in the file are checked before the
// defaults unless replace = true, in which case they are the only topics.
// An empty path returns DefaultRules.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	var f rulesFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return Rules{}, fmt.Errorf("failed to decode rules file %s: %w", path, err)
	}

	if f.Gap != "" {
		gap, err := time.ParseDuration(f.Gap)
		if err != nil {
			return Rules{}, fmt.Errorf("invalid gap %q: %w", f.Gap, err)
		}
		if gap <= 0 {
			return Rules{}, fmt.Errorf("gap must be positive, got %s", gap)
		}
		rules.Gap = gap
	}

	for i, topic := range f.Topics {
		if topic.Label == "" || len(topic.Keywords) == 0 {
			return Rules{}, fmt.Errorf("topic %d needs a label and at least one keyword", i)
		}
	}
	if f.Replace {
		rules.Topics = f.Topics
	} else if len(f.Topics) > 0 {
		rules.Topics = append(append([]Topic{}, f.Topics...), rules.Topics...)
	}

	return rules, nil
}
