package categorizer

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aqlanhadi/sbtax/extractor/common"
	"github.com/sirupsen/logrus"
)

// Result is the outcome of categorizing one description. An empty Category
// with zero Confidence means nothing matched.
type Result struct {
	Category   string  `json:"category"`
	Type       Type    `json:"type,omitempty"`
	Confidence float64 `json:"confidence"`
}

func (r Result) Matched() bool {
	return r.Category != ""
}

type stage int

const (
	stageRules stage = iota
	stageIncome
	stageExcluded
	stageOther
)

// Static excluded patterns always run before business and personal ones,
// whatever priorities the database rules carry.
var stages = []stage{stageRules, stageIncome, stageExcluded, stageOther}

var (
	interAccountMarkers = []string{"IB TRANSFER TO", "IB TRANSFER FROM", "FUND TRANSFERS", "AUTOBANK TRANSFER"}
	mixedMarkers        = []string{"TAKEALOT", "TAKEALO"}
)

// Engine categorizes descriptions against a static table. It holds no
// per-call state and is safe for concurrent use.
type Engine struct {
	table    []Category
	income   []Category
	excluded []Category
	other    []Category
	fee      Category

	// pattern -> *regexp.Regexp, nil for patterns that do not compile
	ruleRegex sync.Map
}

// NewEngine builds an engine over table, which is used in the given order.
func NewEngine(table []Category) *Engine {
	e := &Engine{table: table}
	for _, c := range table {
		switch c.Type {
		case Income:
			e.income = append(e.income, c)
		case Excluded:
			e.excluded = append(e.excluded, c)
		default:
			e.other = append(e.other, c)
		}
		if c.Key == feeCategoryKey {
			e.fee = c
		}
	}
	return e
}

var (
	engineOnce sync.Once
	engine     *Engine
)

func defaultEngine() *Engine {
	engineOnce.Do(func() {
		engine = NewEngine(mustLoadTable())
	})
	return engine
}

// Categorize runs description through the default engine.
func Categorize(description string, rules []Rule) Result {
	return defaultEngine().Categorize(description, rules)
}

// Categorize returns the first category that claims description. Rules are
// consulted first, highest priority wins; the static table follows.
func (e *Engine) Categorize(description string, rules []Rule) Result {
	upper := strings.ToUpper(description)

	for _, s := range stages {
		var (
			res Result
			ok  bool
		)
		switch s {
		case stageRules:
			res, ok = e.matchRules(upper, rules)
		case stageIncome:
			res, ok = e.matchIncome(upper)
		case stageExcluded:
			res, ok = matchTable(upper, e.excluded)
		case stageOther:
			res, ok = matchTable(upper, e.other)
		}
		if ok {
			return res
		}
	}
	return Result{}
}

// isFee catches bank charges that mention the income payer.
func isFee(upper string) bool {
	return strings.Contains(upper, "FEE") && strings.Contains(upper, "TELETRANSMISSION")
}

func (e *Engine) matchRules(upper string, rules []Rule) (Result, bool) {
	if len(rules) == 0 {
		return Result{}, false
	}

	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	for _, r := range sorted {
		if !r.IsActive || !e.ruleMatches(r, upper) {
			continue
		}
		if r.CategoryType == Income && isFee(upper) {
			continue
		}
		return Result{Category: r.CategoryName, Type: r.CategoryType, Confidence: 1.0}, true
	}
	return Result{}, false
}

func (e *Engine) ruleMatches(r Rule, upper string) bool {
	if r.Pattern == "" {
		return false
	}
	if !r.IsRegex {
		return strings.Contains(upper, strings.ToUpper(r.Pattern))
	}
	re := e.compileRule(r.Pattern)
	return re != nil && re.MatchString(upper)
}

// compileRule compiles a user supplied pattern case-insensitively. A pattern
// that does not compile simply never matches.
func (e *Engine) compileRule(pattern string) *regexp.Regexp {
	if cached, ok := e.ruleRegex.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		logrus.WithError(err).WithField("pattern", pattern).Debug("ignoring invalid rule pattern")
		re = nil
	}
	e.ruleRegex.Store(pattern, re)
	return re
}

func (e *Engine) matchIncome(upper string) (Result, bool) {
	for _, c := range e.income {
		for _, p := range c.Patterns {
			if !strings.Contains(upper, p) {
				continue
			}
			if isFee(upper) && e.fee.Name != "" {
				return Result{Category: e.fee.Name, Type: e.fee.Type, Confidence: 1.0}, true
			}
			return Result{Category: c.Name, Type: c.Type, Confidence: 1.0}, true
		}
	}
	return Result{}, false
}

func matchTable(upper string, categories []Category) (Result, bool) {
	for _, c := range categories {
		for _, re := range c.compiled {
			if re.MatchString(upper) {
				return Result{Category: c.Name, Type: c.Type, Confidence: 1.0}, true
			}
		}
	}
	return Result{}, false
}

// IsInterAccountTransfer reports movements between the taxpayer's own
// accounts, which never count as income.
func IsInterAccountTransfer(description string) bool {
	upper := strings.ToUpper(description)
	for _, m := range interAccountMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

// IsMixedPersonalBusiness flags merchants whose baskets usually mix deductible
// and private items, so the transaction should be split by hand.
func IsMixedPersonalBusiness(description string) bool {
	upper := strings.ToUpper(description)
	for _, m := range mixedMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

// Annotate returns a copy of statement with every transaction categorized and
// flagged. The input statement is left untouched.
func Annotate(statement common.Statement, rules []Rule) common.Statement {
	out := statement
	out.Transactions = make([]common.Transaction, len(statement.Transactions))

	for i, tx := range statement.Transactions {
		res := Categorize(tx.Description, rules)
		tx.Category = res.Category
		tx.CategoryType = string(res.Type)
		tx.Confidence = res.Confidence
		tx.InterAccount = IsInterAccountTransfer(tx.Description)
		tx.NeedsSplit = IsMixedPersonalBusiness(tx.Description)
		out.Transactions[i] = tx
	}
	return out
}
