package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// envParser collects every invalid environment variable instead of stopping
// at the first one.
type envParser struct {
	errors []string
}

func (p *envParser) err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(p.errors, "\n  - "))
}

// parseString overrides target when the variable is set and non-empty
func (p *envParser) parseString(envName string, target *string) {
	if val := os.Getenv(envName); val != "" {
		*target = val
	}
}

// parseDuration parses a duration environment variable, ensuring it's positive
func (p *envParser) parseDuration(envName string, target *time.Duration) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid duration format (use '30s', '1m', etc.)", envName))
		return
	}

	if duration <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = duration
}

// parseMargin parses a duration environment variable that may be zero
func (p *envParser) parseMargin(envName string, target *time.Duration) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid duration format (use '30s', '1m', etc.)", envName))
		return
	}

	if duration < 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s cannot be negative", envName))
		return
	}

	*target = duration
}

// parseEnum parses an enum environment variable from a set of valid values
func (p *envParser) parseEnum(envName string, target *string, validValues map[string]bool) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	normalized := strings.ToLower(val)
	if !validValues[normalized] {
		var validList []string
		for k := range validValues {
			validList = append(validList, k)
		}
		sort.Strings(validList)
		p.errors = append(p.errors, fmt.Sprintf("%s must be one of: %s", envName, strings.Join(validList, ", ")))
		return
	}

	*target = normalized
}

// parseList parses a comma separated environment variable, dropping blank items
func (p *envParser) parseList(envName string, target *[]string) {
	val, ok := os.LookupEnv(envName)
	if !ok {
		return
	}
	*target = splitList(val, ",")
}

// parseBoosts parses boost rules written as "special=ref1|ref2;special=ref".
func (p *envParser) parseBoosts(envName string, target *[]BoostRule) {
	val, ok := os.LookupEnv(envName)
	if !ok {
		return
	}

	var rules []BoostRule
	for _, item := range splitList(val, ";") {
		special, refs, found := strings.Cut(item, "=")
		special = strings.TrimSpace(special)
		if !found || special == "" {
			p.errors = append(p.errors, fmt.Sprintf("%s: invalid rule %q (use 'special=ref1|ref2')", envName, item))
			continue
		}
		rules = append(rules, BoostRule{Special: special, References: splitList(refs, "|")})
	}
	*target = rules
}

func splitList(val, sep string) []string {
	items := []string{}
	for _, item := range strings.Split(val, sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
