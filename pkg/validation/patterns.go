package validation

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Named pattern identifiers understood by the default table.
const (
	PatternEmail           = "EMAIL"
	PatternMobilePhone     = "MOBILE_PHONE"
	PatternIDCard          = "ID_CARD"
	PatternURL             = "URL"
	PatternInteger         = "INTEGER"
	PatternPositiveInteger = "POSITIVE_INTEGER"
	PatternFloat           = "FLOAT"
	PatternPositiveFloat   = "POSITIVE_FLOAT"
	PatternChinese         = "CHINESE"
	PatternBankCard        = "BANK_CARD"
	PatternPostalCode      = "POSTAL_CODE"
	PatternIPv4            = "IP_V4"
	PatternUsername        = "USERNAME"
	PatternStrongPassword  = "STRONG_PASSWORD"
)

// Pattern is a named check. Either Regexp or Check must be set; Check wins.
type Pattern struct {
	Name    string
	Regexp  *regexp.Regexp
	Check   func(string) bool
	Message string // appended to the field title
}

// Match reports whether value satisfies the pattern.
func (p Pattern) Match(value string) bool {
	if p.Check != nil {
		return p.Check(value)
	}
	if p.Regexp != nil {
		return p.Regexp.MatchString(value)
	}
	return true
}

// Patterns is a case-insensitive table of named patterns, safe for concurrent
// use.
type Patterns struct {
	mu      sync.RWMutex
	entries map[string]Pattern
}

// NewPatterns returns an empty table.
func NewPatterns() *Patterns {
	return &Patterns{entries: make(map[string]Pattern)}
}

// DefaultPatterns returns a table seeded with the built-in patterns.
func DefaultPatterns() *Patterns {
	table := NewPatterns()
	for _, p := range builtinPatterns() {
		table.Register(p)
	}
	return table
}

// Register adds or replaces a pattern.
func (p *Patterns) Register(pattern Pattern) {
	name := normalize(pattern.Name)
	if name == "" {
		return
	}
	pattern.Name = name
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[name] = pattern
}

// Lookup finds a pattern by name, ignoring case and surrounding whitespace.
func (p *Patterns) Lookup(name string) (Pattern, bool) {
	if p == nil {
		return Pattern{}, false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	pattern, ok := p.entries[normalize(name)]
	return pattern, ok
}

// Names lists registered pattern names in sorted order.
func (p *Patterns) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.entries))
	for name := range p.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func builtinPatterns() []Pattern {
	return []Pattern{
		{Name: PatternEmail, Regexp: regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`), Message: " 邮箱格式不正确"},
		{Name: PatternMobilePhone, Regexp: regexp.MustCompile(`^1[3-9]\d{9}$`), Message: " 手机号码格式不正确"},
		{Name: PatternIDCard, Check: ValidIDCard, Message: " 身份证号码不正确"},
		{Name: PatternURL, Regexp: regexp.MustCompile(`^https?://(www\.)?[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_\+.~#?&/=]*)$`), Message: " 网址格式不正确"},
		{Name: PatternInteger, Regexp: regexp.MustCompile(`^-?\d+$`), Message: " 必须是整数"},
		{Name: PatternPositiveInteger, Regexp: regexp.MustCompile(`^\d+$`), Message: " 必须是正整数"},
		{Name: PatternFloat, Regexp: regexp.MustCompile(`^-?\d+(\.\d+)?$`), Message: " 必须是数字"},
		{Name: PatternPositiveFloat, Regexp: regexp.MustCompile(`^\d+(\.\d+)?$`), Message: " 必须是正数"},
		{Name: PatternChinese, Regexp: regexp.MustCompile(`^[\x{4e00}-\x{9fa5}]+$`), Message: " 只能包含中文"},
		{Name: PatternBankCard, Regexp: regexp.MustCompile(`^\d{13,19}$`), Message: " 银行卡号格式不正确"},
		{Name: PatternPostalCode, Regexp: regexp.MustCompile(`^\d{6}$`), Message: " 邮政编码格式不正确"},
		{Name: PatternIPv4, Regexp: regexp.MustCompile(`^((25[0-5]|2[0-4]\d|[01]?\d\d?)\.){3}(25[0-5]|2[0-4]\d|[01]?\d\d?)$`), Message: " IP地址格式不正确"},
		{Name: PatternUsername, Regexp: regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{3,19}$`), Message: " 用户名格式不正确"},
		{Name: PatternStrongPassword, Check: strongPassword, Message: " 密码强度不足"},
	}
}

const passwordSpecials = "@$!%*?&"

// strongPassword requires at least eight characters drawn from letters,
// digits and passwordSpecials, with at least one of each class. RE2 has no
// lookahead, so the classes are counted directly.
func strongPassword(value string) bool {
	if len(value) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}
