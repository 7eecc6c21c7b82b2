package chat

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Grammar is one named line layout. Grammars are tried in order and the first match wins.
type Grammar struct {
	Name    string
	Pattern *regexp.Regexp
}

const (
	monthPart = `(?:0?[1-9]|1[0-2])`
	dayPart   = `(?:0?[1-9]|[12]\d|3[01])`
	yearPart  = `(?:\d{4}|\d{2})`
	datePart  = `[/\-.]`
	timePart  = `(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AaPp]\.?[Mm]\.?)?)`
	dashPart  = `\s*[-\x{2013}]\s+`
	bodyPart  = `([^:]+):\s+(.*)$`
)

// Grammars lists the supported export layouts in precedence order.
// Each pattern captures date, time, sender and text.
var Grammars = []Grammar{
	{
		Name: "us",
		Pattern: regexp.MustCompile(`^\[?(` + monthPart + datePart + dayPart + datePart + yearPart + `)\]?,?\s+` +
			timePart + `\]?` + dashPart + bodyPart),
	},
	{
		Name: "intl",
		Pattern: regexp.MustCompile(`^\[?(` + dayPart + datePart + monthPart + datePart + yearPart + `)\]?,?\s+` +
			timePart + `\]?` + dashPart + bodyPart),
	},
	{
		Name: "ios",
		Pattern: regexp.MustCompile(`^\[(\d{1,2}` + datePart + `\d{1,2}` + datePart + yearPart + `),?\s+` +
			timePart + `\]\s+` + bodyPart),
	},
}

// exportLinePattern is the looser header check used by the validator.
var exportLinePattern = regexp.MustCompile(`^\[?\d{1,2}` + datePart + `\d{1,2}` + datePart + yearPart + `\]?,?\s+` +
	`\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AaPp]\.?[Mm]\.?)?\s*(?:\]|[-\x{2013}])`)

// invisibles strips the direction marks and odd spaces exports carry around timestamps.
var invisibles = strings.NewReplacer(
	"\uFEFF", "",
	"\u200E", "",
	"\u200F", "",
	"\u202F", " ",
	"\u00A0", " ",
)

func normalizeLine(line string) string {
	return strings.TrimSpace(invisibles.Replace(line))
}

// Match is a line accepted by one of the grammars.
type Match struct {
	Grammar string
	Date    string
	Time    string
	Sender  string
	Text    string
}

// MatchLine applies the grammars in order and returns the first match.
func MatchLine(line string) (Match, bool) {
	line = normalizeLine(line)
	if line == "" {
		return Match{}, false
	}
	for _, g := range Grammars {
		m := g.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return Match{
			Grammar: g.Name,
			Date:    m[1],
			Time:    strings.TrimSpace(m[2]),
			Sender:  strings.TrimSpace(m[3]),
			Text:    strings.TrimSpace(m[4]),
		}, true
	}
	return Match{}, false
}

// dateLayouts are tried in order: month first then day first, short year before long year.
var dateLayouts = []string{"1/2/06", "1/2/2006", "2/1/06", "2/1/2006"}

// NormalizeDate converts an export date to YYYY-MM-DD, returning raw unchanged when no layout fits.
func NormalizeDate(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.NewReplacer("-", "/", ".", "/").Replace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

// MessageID derives the stable identifier of the line at lineIndex in sourceFile.
func MessageID(sourceFile string, lineIndex int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", sourceFile, lineIndex)))
	return hex.EncodeToString(sum[:])[:16]
}
