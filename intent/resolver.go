// Package intent maps free-text prompts to canned portal replies.
// The rule table lives in an embedded YAML file so new intents can be added
// without touching the matching code.
package intent

import (
	_ "embed"
	"sort"
	"strings"

	"krishi-mitra/domain"
	"krishi-mitra/errors"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

type optionSpec struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Kind  string `yaml:"kind"`
}

type ruleSpec struct {
	Name        string       `yaml:"name"`
	Keywords    []string     `yaml:"keywords"`
	Reply       string       `yaml:"reply"`
	Options     []optionSpec `yaml:"options"`
	UseMainMenu bool         `yaml:"use_main_menu"`
}

type ruleFile struct {
	MainMenu []optionSpec `yaml:"main_menu"`
	Rules    []ruleSpec   `yaml:"rules"`
	Fallback ruleSpec     `yaml:"fallback"`
}

// Resolver classifies prompts against an ordered keyword rule list.
// It is stateless after construction and safe for concurrent use.
type Resolver struct {
	matcher *goahocorasick.Machine
	// Lowest rule index owning each normalized keyword. Lower wins, so the
	// table order is the evaluation order.
	byKeyword map[string]int
	replies   []domain.Reply
	fallback  domain.Reply
	mainMenu  []domain.ReplyOption
}

// NewResolver builds the resolver from the embedded rule table.
func NewResolver() (*Resolver, error) {
	return newResolver(rulesYAML)
}

func newResolver(raw []byte) (*Resolver, error) {
	var file ruleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	if len(file.Rules) == 0 {
		return nil, errors.ErrNoRules
	}

	// The main menu is built once and shared by reference across replies.
	mainMenu := toOptions(file.MainMenu)

	r := &Resolver{
		byKeyword: make(map[string]int),
		mainMenu:  mainMenu,
	}

	var patterns [][]rune
	for i, spec := range file.Rules {
		r.replies = append(r.replies, toReply(spec, mainMenu))
		for _, kw := range spec.Keywords {
			normalized := strings.ToLower(kw)
			if _, seen := r.byKeyword[normalized]; !seen {
				r.byKeyword[normalized] = i
				patterns = append(patterns, []rune(normalized))
			}
		}
	}
	r.fallback = toReply(file.Fallback, mainMenu)

	// The double-array trie underneath requires lexicographically sorted input.
	sort.Slice(patterns, func(i, j int) bool {
		return string(patterns[i]) < string(patterns[j])
	})
	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	r.matcher = machine
	return r, nil
}

// Resolve classifies a prompt. It is pure and deterministic: the same prompt
// always yields the same reply, and unmatched input gets the fallback with the
// main menu attached. Matching is case-insensitive substring search.
func (r *Resolver) Resolve(prompt string) domain.Reply {
	lowered := []rune(strings.ToLower(prompt))
	terms := r.matcher.MultiPatternSearch(lowered, false)

	best := -1
	for _, term := range terms {
		idx := r.byKeyword[string(term.Word)]
		if best == -1 || idx < best {
			best = idx
		}
	}
	if best == -1 {
		return r.fallback
	}
	return r.replies[best]
}

// MainMenu exposes the shared menu options. Callers must not mutate it.
func (r *Resolver) MainMenu() []domain.ReplyOption {
	return r.mainMenu
}

func toReply(spec ruleSpec, mainMenu []domain.ReplyOption) domain.Reply {
	reply := domain.Reply{Text: spec.Reply}
	switch {
	case spec.UseMainMenu:
		reply.Options = mainMenu
	case len(spec.Options) > 0:
		reply.Options = toOptions(spec.Options)
	}
	return reply
}

func toOptions(specs []optionSpec) []domain.ReplyOption {
	return lo.Map(specs, func(o optionSpec, _ int) domain.ReplyOption {
		return domain.ReplyOption{
			Label: o.Label,
			Value: o.Value,
			Kind:  domain.OptionKind(o.Kind),
		}
	})
}
