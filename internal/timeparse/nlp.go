package timeparse

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// nlParser is built once; when's parsers are stateless after construction.
var nlParser = newNLParser()

func newNLParser() *when.Parser {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return p
}

// ParseNaturalLanguage parses expressions like "tomorrow", "next friday",
// or "in 3 days" relative to now. Returns an error when the input contains
// no recognizable time expression.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	result, err := nlParser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("no time expression in %q", s)
	}
	return result.Time, nil
}
