package repo

import "strings"

// Topic labels assigned by the classifier. TopicSearchResult is a marker for
// search-originated records and is never produced by Classify.
const (
	TopicAI           = "AI / LLM"
	TopicWeb          = "Web / App"
	TopicTools        = "Tools / CLI"
	TopicSystems      = "Systems / OS"
	TopicMobile       = "Mobile"
	TopicGeneral      = "General"
	TopicSearchResult = "Search Result"
)

// Rule maps a set of trigger keywords to a topic. Rules are evaluated in
// order with first-match-wins semantics; extend DefaultRules rather than the
// control flow to add a category.
type Rule struct {
	Topic    string
	Keywords []string
}

// DefaultRules is the ordered classification table. A repository matches a
// rule when any keyword appears as a whole word in its language or
// description.
var DefaultRules = []Rule{
	{TopicAI, []string{"ai", "llm", "llms", "gpt", "model", "models", "inference", "agent", "agents", "rag", "learning", "llama"}},
	{TopicWeb, []string{"web", "react", "vue", "frontend", "backend", "nextjs", "api", "framework"}},
	{TopicTools, []string{"cli", "tool", "tools", "utility", "helper", "automation", "workflow"}},
	{TopicSystems, []string{"system", "kernel", "driver", "hardware", "linux", "os", "memory", "cpu"}},
	{TopicMobile, []string{"ios", "android", "mobile", "flutter", "swift", "kotlin"}},
}

// Classify assigns a topic from the language and description of a repository.
// It is a pure function: identical input always yields the identical topic.
// Unmatched records fall through to TopicGeneral.
func Classify(language, description string) string {
	words := tokenize(language + " " + description)

	for _, rule := range DefaultRules {
		for _, kw := range rule.Keywords {
			if _, ok := words[kw]; ok {
				return rule.Topic
			}
		}
	}
	return TopicGeneral
}

// tokenize lowercases the text and splits it into a word set on any
// non-alphanumeric boundary, so "self-hosted LLM" yields {self, hosted, llm}.
func tokenize(text string) map[string]struct{} {
	words := make(map[string]struct{})
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	for _, f := range fields {
		words[f] = struct{}{}
	}
	return words
}
