package rules

import (
	"context"
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	vine "github.com/reoring/vine"
)

var (
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	hexCodePattern = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	mobilePattern  = regexp.MustCompile(`^\+?[0-9][0-9 -]{5,18}[0-9]$`)

	stripTags = bluemonday.StrictPolicy()
)

// StringRule fails for anything but a string.
var StringRule = vine.CreateRule("string", func(value any, _ any, field *vine.FieldContext) {
	if _, ok := value.(string); !ok {
		field.Report(vine.CodeInvalidType, "string", map[string]any{"expected": "string"})
	}
})

// String binds StringRule.
func String() vine.Validation { return StringRule.With(nil) }

// FormatOptions name the format a string must satisfy. The remaining
// fields only apply to the email and url formats.
type FormatOptions struct {
	Format string `json:"format" yaml:"format"`
	// email
	AllowDisplayName bool     `json:"allowDisplayName,omitempty" yaml:"allowDisplayName,omitempty"`
	Hosts            []string `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	// url
	Protocols  []string `json:"protocols,omitempty" yaml:"protocols,omitempty"`
	RequireTLD bool     `json:"requireTld,omitempty" yaml:"requireTld,omitempty"`
}

// EmailOptions tune the email format.
type EmailOptions struct {
	// AllowDisplayName accepts `Ada Lovelace <ada@example.com>`.
	AllowDisplayName bool `yaml:"allowDisplayName"`
	// Hosts restricts the domain part when non-empty.
	Hosts []string `yaml:"hosts"`
}

// URLOptions tune the url format.
type URLOptions struct {
	// Protocols lists the accepted schemes. Empty accepts any scheme.
	Protocols []string `yaml:"protocols"`
	// RequireTLD rejects hosts without a dot, such as localhost.
	RequireTLD bool `yaml:"requireTld"`
}

// FormatRule checks email, url, hexCode and mobile formats.
var FormatRule = vine.CreateRule("format", func(value any, options any, field *vine.FieldContext) {
	s, ok := value.(string)
	if !ok {
		return
	}
	o := options.(FormatOptions)
	if !matchFormat(o, s) {
		field.Report(vine.CodeInvalidFormat, o.Format, map[string]any{"format": o.Format})
	}
})

func matchFormat(o FormatOptions, s string) bool {
	switch o.Format {
	case "email":
		return matchEmail(o, s)
	case "url":
		return matchURL(o, s)
	case "hexCode":
		return hexCodePattern.MatchString(s)
	case "mobile":
		return mobilePattern.MatchString(s)
	}
	return false
}

func matchEmail(o FormatOptions, s string) bool {
	if o.AllowDisplayName && strings.Contains(s, "<") {
		addr, err := mail.ParseAddress(s)
		if err != nil {
			return false
		}
		s = addr.Address
	}
	if !emailPattern.MatchString(s) {
		return false
	}
	if len(o.Hosts) == 0 {
		return true
	}
	domain := s[strings.LastIndexByte(s, '@')+1:]
	return slices.ContainsFunc(o.Hosts, func(h string) bool { return strings.EqualFold(h, domain) })
}

func matchURL(o FormatOptions, s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	if len(o.Protocols) > 0 && !slices.ContainsFunc(o.Protocols, func(p string) bool { return strings.EqualFold(p, u.Scheme) }) {
		return false
	}
	if o.RequireTLD {
		host := u.Hostname()
		dot := strings.LastIndexByte(host, '.')
		if dot <= 0 || dot == len(host)-1 {
			return false
		}
	}
	return true
}

// Email binds the email format. Only the first options value is used.
func Email(opts ...EmailOptions) vine.Validation {
	o := FormatOptions{Format: "email"}
	if len(opts) > 0 {
		o.AllowDisplayName, o.Hosts = opts[0].AllowDisplayName, opts[0].Hosts
	}
	return FormatRule.With(o)
}

// URL binds the url format. Only the first options value is used.
func URL(opts ...URLOptions) vine.Validation {
	o := FormatOptions{Format: "url"}
	if len(opts) > 0 {
		o.Protocols, o.RequireTLD = opts[0].Protocols, opts[0].RequireTLD
	}
	return FormatRule.With(o)
}

func HexCode() vine.Validation { return FormatRule.With(FormatOptions{Format: "hexCode"}) }
func Mobile() vine.Validation  { return FormatRule.With(FormatOptions{Format: "mobile"}) }

// HostResolver resolves host names. *net.Resolver satisfies it.
type HostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

const defaultActiveURLTimeout = 5 * time.Second

// ActiveURLOptions configure ActiveURLRule. The zero value uses
// net.DefaultResolver with a five second timeout.
type ActiveURLOptions struct {
	Timeout  time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Resolver HostResolver  `json:"-" yaml:"-"`
}

// ActiveURLRule fails unless the value is a URL whose host resolves to at
// least one address.
var ActiveURLRule = vine.CreateRule("activeUrl", func(value any, options any, field *vine.FieldContext) {
	s, ok := value.(string)
	if !ok {
		return
	}
	if !activeHost(options.(ActiveURLOptions), s) {
		field.Report(vine.CodeInvalidFormat, "activeUrl", map[string]any{"format": "active URL"})
	}
})

func activeHost(o ActiveURLOptions, s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return false
	}
	r := o.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = defaultActiveURLTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	addrs, err := r.LookupHost(ctx, u.Hostname())
	return err == nil && len(addrs) > 0
}

// ActiveURL binds ActiveURLRule. Only the first options value is used.
func ActiveURL(opts ...ActiveURLOptions) vine.Validation {
	var o ActiveURLOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return ActiveURLRule.With(o)
}

// RegexOptions carry the compiled expression.
type RegexOptions struct {
	Pattern *regexp.Regexp `json:"pattern" yaml:"pattern"`
}

// RegexRule fails when the string does not match Pattern.
var RegexRule = vine.CreateRule("regex", func(value any, options any, field *vine.FieldContext) {
	s, ok := value.(string)
	if !ok {
		return
	}
	re := options.(RegexOptions).Pattern
	if !re.MatchString(s) {
		field.Report(vine.CodePattern, "regex", map[string]any{"pattern": re.String()})
	}
})

// Regex binds RegexRule to re.
func Regex(re *regexp.Regexp) vine.Validation { return RegexRule.With(RegexOptions{Pattern: re}) }

// AlphaOptions widen the accepted alphabet.
type AlphaOptions struct {
	AllowSpaces      bool `json:"allowSpaces,omitempty" yaml:"allowSpaces,omitempty"`
	AllowUnderscores bool `json:"allowUnderscores,omitempty" yaml:"allowUnderscores,omitempty"`
	AllowDashes      bool `json:"allowDashes,omitempty" yaml:"allowDashes,omitempty"`
	Numbers          bool `json:"numbers,omitempty" yaml:"numbers,omitempty"`
}

func (o AlphaOptions) accepts(r rune) bool {
	switch {
	case unicode.IsLetter(r):
		return true
	case o.Numbers && unicode.IsDigit(r):
		return true
	case o.AllowSpaces && r == ' ':
		return true
	case o.AllowUnderscores && r == '_':
		return true
	case o.AllowDashes && r == '-':
		return true
	}
	return false
}

// AlphaRule restricts a string to letters (and numbers when Numbers is set).
var AlphaRule = vine.CreateRule("alpha", func(value any, options any, field *vine.FieldContext) {
	s, ok := value.(string)
	if !ok {
		return
	}
	opt := options.(AlphaOptions)
	for _, r := range s {
		if !opt.accepts(r) {
			name := "alpha"
			if opt.Numbers {
				name = "alphaNumeric"
			}
			field.Report(vine.CodePattern, name, nil)
			return
		}
	}
})

func Alpha(opt AlphaOptions) vine.Validation { opt.Numbers = false; return AlphaRule.With(opt) }
func AlphaNumeric(opt AlphaOptions) vine.Validation {
	opt.Numbers = true
	return AlphaRule.With(opt)
}

// AffixOptions hold the substring for StartsWith/EndsWith.
type AffixOptions struct {
	Substring string `json:"substring" yaml:"substring"`
}

var StartsWithRule = vine.CreateRule("startsWith", func(value any, options any, field *vine.FieldContext) {
	s, ok := value.(string)
	sub := options.(AffixOptions).Substring
	if ok && !strings.HasPrefix(s, sub) {
		field.Report(vine.CodePattern, "startsWith", map[string]any{"substring": sub})
	}
})

var EndsWithRule = vine.CreateRule("endsWith", func(value any, options any, field *vine.FieldContext) {
	s, ok := value.(string)
	sub := options.(AffixOptions).Substring
	if ok && !strings.HasSuffix(s, sub) {
		field.Report(vine.CodePattern, "endsWith", map[string]any{"substring": sub})
	}
})

func StartsWith(s string) vine.Validation { return StartsWithRule.With(AffixOptions{Substring: s}) }
func EndsWith(s string) vine.Validation   { return EndsWithRule.With(AffixOptions{Substring: s}) }

// InOptions list the accepted values.
type InOptions struct {
	Choices []string `json:"choices" yaml:"choices"`
}

// InRule fails when the string is not one of Choices.
var InRule = vine.CreateRule("in", func(value any, options any, field *vine.FieldContext) {
	s, ok := value.(string)
	if !ok {
		return
	}
	for _, c := range options.(InOptions).Choices {
		if c == s {
			return
		}
	}
	field.Report(vine.CodeInvalidEnum, "in", nil)
})

// In binds InRule to a copy of choices.
func In(choices ...string) vine.Validation {
	return InRule.With(InOptions{Choices: append([]string(nil), choices...)})
}

// TransformOptions name the string transform.
type TransformOptions struct {
	Op string `json:"op" yaml:"op"`
}

// TransformRule rewrites the string in place: trim, lower, upper, sanitize.
// Sanitize strips every HTML tag with bluemonday's strict policy.
var TransformRule = vine.CreateRule("transform", func(value any, options any, field *vine.FieldContext) {
	s, ok := value.(string)
	if !ok {
		return
	}
	switch options.(TransformOptions).Op {
	case "trim":
		s = strings.TrimSpace(s)
	case "lower":
		s = strings.ToLower(s)
	case "upper":
		s = strings.ToUpper(s)
	case "sanitize":
		s = stripTags.Sanitize(s)
	}
	field.Mutate(s)
})

func Trim() vine.Validation        { return TransformRule.With(TransformOptions{Op: "trim"}) }
func ToLowerCase() vine.Validation { return TransformRule.With(TransformOptions{Op: "lower"}) }
func ToUpperCase() vine.Validation { return TransformRule.With(TransformOptions{Op: "upper"}) }
func Sanitize() vine.Validation    { return TransformRule.With(TransformOptions{Op: "sanitize"}) }
