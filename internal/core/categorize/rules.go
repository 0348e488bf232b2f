// Package categorize sorts starred repositories into named categories
// using regex rules matched against repository metadata.
package categorize

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starlens/starlens/internal/core"
)

// Uncategorized collects repositories no rule matched.
const Uncategorized = "uncategorized"

// Rule maps a category name to the patterns that select repositories
// for it. Patterns are case-insensitive regexes run against the full
// name, description, primary language, and topics.
type Rule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`

	compiled []*regexp.Regexp
}

// DefaultRules is the built-in category table; per-user rule files
// replace it wholesale.
var DefaultRules = []Rule{
	{Name: "languages-go", Patterns: []string{`\bgolang\b`, `^go$`, `\bgo[- ]?(library|kit|tool)`}},
	{Name: "languages-rust", Patterns: []string{`\brust\b`, `^rust$`}},
	{Name: "languages-python", Patterns: []string{`\bpython\b`, `^python$`, `\bdjango\b`, `\bflask\b`}},
	{Name: "languages-javascript", Patterns: []string{`\bjavascript\b`, `\btypescript\b`, `\bnode(js)?\b`, `\breact\b`, `\bvue\b`}},
	{Name: "databases", Patterns: []string{`\bdatabase\b`, `\bsql\b`, `\bpostgres\b`, `\bsqlite\b`, `\bredis\b`, `\bkey[- ]?value\b`}},
	{Name: "devops", Patterns: []string{`\bdocker\b`, `\bkubernetes\b`, `\bk8s\b`, `\bterraform\b`, `\bci/?cd\b`, `\bdeploy`}},
	{Name: "cli-tools", Patterns: []string{`\bcli\b`, `\bcommand[- ]line\b`, `\bterminal\b`, `\bshell\b`}},
	{Name: "web", Patterns: []string{`\bhttp\b`, `\bweb\b`, `\bapi\b`, `\brest\b`, `\bserver\b`}},
	{Name: "machine-learning", Patterns: []string{`\bmachine[- ]learning\b`, `\bdeep[- ]learning\b`, `\bneural\b`, `\bllm\b`, `\bml\b`}},
	{Name: "security", Patterns: []string{`\bsecurity\b`, `\bcrypto(graphy)?\b`, `\bvulnerabilit`, `\bpentest`}},
	{Name: "learning", Patterns: []string{`\bawesome\b`, `\btutorial\b`, `\bexamples?\b`, `\blearn(ing)?\b`, `\bbook\b`}},
}

// Compile validates and compiles rule patterns.
func Compile(rules []Rule) ([]Rule, error) {
	compiled := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return nil, fmt.Errorf("category rule is missing a name")
		}

		rule.compiled = rule.compiled[:0]
		for _, pattern := range rule.Patterns {
			re, err := regexp.Compile(`(?i)` + pattern)
			if err != nil {
				return nil, fmt.Errorf("category %q: invalid pattern %q: %w", name, pattern, err)
			}
			rule.compiled = append(rule.compiled, re)
		}
		compiled = append(compiled, rule)
	}
	return compiled, nil
}

// LoadRules reads a YAML rule file. An empty path selects the built-in
// table.
func LoadRules(path string) ([]Rule, error) {
	if strings.TrimSpace(path) == "" {
		return Compile(DefaultRules)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category rules: %w", err)
	}

	var doc struct {
		Categories []Rule `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse category rules: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("category rules file %s defines no categories", path)
	}

	return Compile(doc.Categories)
}

// Categorize returns the categories matching one repository, in rule
// order. No match yields the Uncategorized bucket.
func Categorize(rules []Rule, repo core.Repository) []string {
	haystack := strings.ToLower(strings.Join([]string{
		repo.FullName,
		repo.Description,
		repo.Language,
		strings.Join(repo.Topics, " "),
	}, "\n"))

	var matched []string
	for _, rule := range rules {
		for _, re := range rule.compiled {
			if re.MatchString(haystack) {
				matched = append(matched, rule.Name)
				break
			}
		}
	}

	if len(matched) == 0 {
		return []string{Uncategorized}
	}
	return matched
}

// BuildReport groups stars by category. Order lists matched categories
// in rule order with Uncategorized last.
func BuildReport(rules []Rule, account string, stars []core.StarredRepo) *core.CategoryReport {
	report := &core.CategoryReport{
		Account:     account,
		GeneratedAt: time.Now().UTC(),
		Categories:  make(map[string][]core.StarredRepo),
	}

	for _, star := range stars {
		for _, name := range Categorize(rules, star.Repo) {
			report.Categories[name] = append(report.Categories[name], star)
		}
	}

	for _, rule := range rules {
		if _, ok := report.Categories[rule.Name]; ok {
			report.Order = append(report.Order, rule.Name)
		}
	}
	if _, ok := report.Categories[Uncategorized]; ok {
		report.Order = append(report.Order, Uncategorized)
	}

	for name := range report.Categories {
		repos := report.Categories[name]
		sort.Slice(repos, func(i, j int) bool {
			return repos[i].Repo.FullName < repos[j].Repo.FullName
		})
	}

	return report
}
