package formats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/crillab/gowcsp/wcsp"
)

// cfnToken is one lexical unit of a CFN file: a punctuation rune ({ } [ ]
// : ,) or a bare word/number/string.
type cfnToken struct {
	text string
	line int
}

// cfnLexer tokenizes a CFN file. Braces and brackets are structurally
// interchangeable (spec §6.1: "Braces { } [ ] are interchangeable
// structurally"), so the parser below never distinguishes them; this
// lexer normalises both to a single "block" delimiter pair to make that
// explicit.
type cfnLexer struct {
	r     *bufio.Reader
	line  int
	stack []cfnToken
}

func newCFNLexer(r io.Reader) *cfnLexer {
	return &cfnLexer{r: bufio.NewReader(r), line: 1}
}

func (l *cfnLexer) Push(t cfnToken) { l.stack = append(l.stack, t) }

func (l *cfnLexer) Next() (cfnToken, error) {
	if n := len(l.stack); n > 0 {
		t := l.stack[n-1]
		l.stack = l.stack[:n-1]
		return t, nil
	}
	for {
		b, err := l.r.ReadByte()
		if err != nil {
			return cfnToken{}, err
		}
		switch {
		case b == '\n':
			l.line++
		case b == ' ' || b == '\t' || b == '\r' || b == ',':
			continue
		case b == '#':
			l.r.ReadString('\n')
			l.line++
			continue
		case b == '/':
			nb, err := l.r.ReadByte()
			if err == nil && nb == '/' {
				l.r.ReadString('\n')
				l.line++
				continue
			}
			if err == nil {
				l.r.UnreadByte()
			}
			return cfnToken{text: "/", line: l.line}, nil
		case b == '{' || b == '[':
			return cfnToken{text: "{", line: l.line}, nil
		case b == '}' || b == ']':
			return cfnToken{text: "}", line: l.line}, nil
		case b == ':':
			return cfnToken{text: ":", line: l.line}, nil
		case b == '"':
			return l.readString()
		default:
			return l.readWord(b)
		}
	}
}

func (l *cfnLexer) readString() (cfnToken, error) {
	line := l.line
	var sb strings.Builder
	for {
		b, err := l.r.ReadByte()
		if err != nil {
			return cfnToken{}, fmt.Errorf("unterminated string at line %d", line)
		}
		if b == '"' {
			return cfnToken{text: sb.String(), line: line}, nil
		}
		sb.WriteByte(b)
	}
}

func (l *cfnLexer) readWord(first byte) (cfnToken, error) {
	line := l.line
	var sb strings.Builder
	sb.WriteByte(first)
	for {
		b, err := l.r.ReadByte()
		if err != nil {
			break
		}
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == ',' ||
			b == '{' || b == '}' || b == '[' || b == ']' || b == ':' {
			l.r.UnreadByte()
			break
		}
		sb.WriteByte(b)
	}
	return cfnToken{text: sb.String(), line: line}, nil
}

// cfnFunction is the generic shape of one entry under "functions": a scope
// of variable indices, an optional default cost, and either a flat cost
// table or a named reference to a previously built table (table sharing,
// spec §4.4).
type cfnFunction struct {
	scope       []int
	defaultCost *wcsp.Cost
	costs       []wcsp.Cost
	shareOf     string
}

// ParseCFN reads the CFN JSON-like format (spec §4.4, §6.1). It accepts
// both the tag-qualified and the tag-free positional forms; tags present
// in the input are consumed but not required, matching "tags are optional
// if the positional form is followed consistently".
func ParseCFN(r io.Reader, opts wcsp.Options) (*wcsp.WCSP, error) {
	lx := newCFNLexer(r)
	p := &cfnParser{lx: lx, opts: opts, shared: make(map[string]cfnSharedTable)}
	return p.parse()
}

type cfnParser struct {
	lx     *cfnLexer
	opts   wcsp.Options
	w      *wcsp.WCSP
	shared map[string]cfnSharedTable
}

// cfnSharedTable is a previously defined function's table kept around for
// a later "shares" reference, along with the domain sizes of the scope it
// was defined over, so a reusing function's own scope can be checked for
// an exact arity/domain-size match (spec §4.4: "arities and domain sizes
// of the two scopes must match exactly").
type cfnSharedTable struct {
	domainSizes []int
	costs       []wcsp.Cost
}

func (p *cfnParser) parse() (*wcsp.WCSP, error) {
	tok, err := p.lx.Next()
	if err != nil {
		return nil, fmt.Errorf("cfn: %v", err)
	}
	if tok.text != "{" {
		return nil, &wcsp.FormatError{Line: tok.line, Token: tok.text, Msg: "expected opening block"}
	}

	name := "cfn"
	var mustbe string

	for {
		tok, err := p.lx.Next()
		if err != nil {
			return nil, fmt.Errorf("cfn: %v", err)
		}
		if tok.text == "}" {
			break
		}
		switch tok.text {
		case "problem":
			if err := p.optionalColon(); err != nil {
				return nil, err
			}
			open, err := p.lx.Next()
			if err != nil {
				return nil, err
			}
			if open.text != "{" {
				// Positional form: "problem: <name>" with no nested block.
				name = open.text
				break
			}
			for {
				inner, err := p.lx.Next()
				if err != nil {
					return nil, err
				}
				if inner.text == "}" {
					break
				}
				switch inner.text {
				case "name":
					v, err := p.valueAfterOptionalColon()
					if err != nil {
						return nil, err
					}
					name = v
				case "mustbe":
					v, err := p.valueAfterOptionalColon()
					if err != nil {
						return nil, err
					}
					mustbe = v
				default:
					name = inner.text
				}
			}
		case "name":
			nameTok, err := p.valueAfterOptionalColon()
			if err != nil {
				return nil, err
			}
			name = nameTok
		case "mustbe":
			mb, err := p.valueAfterOptionalColon()
			if err != nil {
				return nil, err
			}
			mustbe = mb
		case "variables":
			if p.w == nil {
				p.w = wcsp.NewWithOptions(name, p.opts)
			}
			if err := p.parseVariables(); err != nil {
				return nil, err
			}
		case "functions":
			if p.w == nil {
				p.w = wcsp.NewWithOptions(name, p.opts)
			}
			if err := p.parseFunctions(); err != nil {
				return nil, err
			}
		default:
			// Tag-free positional form: the token we just consumed is
			// actually data for an implicit section. CFN in the wild is
			// strict enough about section order that we treat an unknown
			// bare token at top level as the positional "name" if none
			// was set yet, then continue.
			if p.w == nil && mustbe == "" && name == "cfn" {
				name = tok.text
			}
		}
	}
	if p.w == nil {
		p.w = wcsp.NewWithOptions(name, p.opts)
	}
	if mustbe != "" {
		if err := applyMustBe(p.w, mustbe, p.opts); err != nil {
			return nil, err
		}
	}
	p.w.SortConstraints()
	return p.w, nil
}

func (p *cfnLexer) Expect(want string) error {
	tok, err := p.Next()
	if err != nil {
		return err
	}
	if tok.text != want {
		return &wcsp.FormatError{Line: tok.line, Token: tok.text, Msg: fmt.Sprintf("expected %q", want)}
	}
	return nil
}

// valueAfterOptionalColon reads one value token, skipping a leading ':' if
// present (tag-qualified vs tag-free forms, spec §6.1).
func (p *cfnParser) valueAfterOptionalColon() (string, error) {
	tok, err := p.lx.Next()
	if err != nil {
		return "", err
	}
	if tok.text == ":" {
		tok, err = p.lx.Next()
		if err != nil {
			return "", err
		}
	}
	return tok.text, nil
}

// optionalColon consumes a leading ':' if the next token is one, pushing
// it back otherwise, so tag-qualified and tag-free forms both reach the
// caller's block-opening token (spec §6.1).
func (p *cfnParser) optionalColon() error {
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	if tok.text != ":" {
		p.lx.Push(tok)
	}
	return nil
}

// mustbe is `<digits[.digits]` or `>digits[.digits]`; applyMustBe passes the
// number after the leading character to UpdateUb as the problem's bound.
// The leading comparator is not interpreted: it neither selects
// maximisation nor changes the multiplier.
func applyMustBe(w *wcsp.WCSP, mustbe string, opts wcsp.Options) error {
	if len(mustbe) < 2 {
		return &wcsp.FormatError{Msg: fmt.Sprintf("malformed mustbe %q", mustbe)}
	}
	numTok := mustbe[1:]
	raw, err := wcsp.ParseDecimalCost(numTok, opts.Precision)
	if err != nil {
		return fmt.Errorf("cfn: mustbe %q: %v", mustbe, err)
	}
	return w.UpdateUb(wcsp.Cost(raw))
}

func (p *cfnParser) parseVariables() error {
	if err := p.optionalColon(); err != nil {
		return err
	}
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	if tok.text != "{" {
		return &wcsp.FormatError{Line: tok.line, Token: tok.text, Msg: "expected variables block"}
	}
	for {
		nameTok, err := p.lx.Next()
		if err != nil {
			return err
		}
		if nameTok.text == "}" {
			return nil
		}
		if err := p.lx.Expect(":"); err != nil {
			return err
		}
		domTok, err := p.lx.Next()
		if err != nil {
			return err
		}
		if domTok.text == "{" {
			var names []string
			for {
				vt, err := p.lx.Next()
				if err != nil {
					return err
				}
				if vt.text == "}" {
					break
				}
				names = append(names, vt.text)
			}
			idx, err := p.w.MakeEnumeratedVariable(nameTok.text, len(names))
			if err != nil {
				return err
			}
			for i, vn := range names {
				if err := p.w.NameValue(idx, vn, i); err != nil {
					return err
				}
			}
		} else {
			d, err := strconv.Atoi(domTok.text)
			if err != nil {
				return &wcsp.FormatError{Line: domTok.line, Token: domTok.text, Msg: "expected a domain size or a value list"}
			}
			if _, err := p.w.MakeEnumeratedVariable(nameTok.text, d); err != nil {
				return err
			}
		}
	}
}

func (p *cfnParser) parseFunctions() error {
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	if tok.text == ":" {
		tok, err = p.lx.Next()
		if err != nil {
			return err
		}
	}
	if tok.text != "{" {
		return &wcsp.FormatError{Line: tok.line, Token: tok.text, Msg: "expected functions block"}
	}
	for {
		nameTok, err := p.lx.Next()
		if err != nil {
			return err
		}
		if nameTok.text == "}" {
			return nil
		}
		if err := p.lx.Expect(":"); err != nil {
			return err
		}
		if err := p.parseOneFunction(nameTok.text); err != nil {
			return err
		}
	}
}

func (p *cfnParser) parseOneFunction(funcName string) error {
	open, err := p.lx.Next()
	if err != nil {
		return err
	}
	if open.text != "{" {
		return &wcsp.FormatError{Line: open.line, Token: open.text, Msg: "expected function block"}
	}
	var scope []int
	var defaultCost *wcsp.Cost
	var costs []wcsp.Cost
	shareOf := ""
	template := ""
	var tparams templateParams

	for {
		tok, err := p.lx.Next()
		if err != nil {
			return err
		}
		if tok.text == "}" {
			break
		}
		switch tok.text {
		case "scope":
			if err := p.optionalColon(); err != nil {
				return err
			}
			scope, err = p.readScope()
			if err != nil {
				return err
			}
		case "defaultcost":
			v, err := p.readCostValue()
			if err != nil {
				return err
			}
			defaultCost = &v
		case "costs":
			if err := p.optionalColon(); err != nil {
				return err
			}
			costs, err = p.readCostList()
			if err != nil {
				return err
			}
		case "shares":
			v, err := p.valueAfterOptionalColon()
			if err != nil {
				return err
			}
			shareOf = v
		case "type":
			v, err := p.valueAfterOptionalColon()
			if err != nil {
				return err
			}
			template = v
		case "params":
			if err := p.optionalColon(); err != nil {
				return err
			}
			tparams, err = p.readTemplateParams()
			if err != nil {
				return err
			}
		default:
			// A bare numeric token at this level is a positional scope
			// index (tag-free form): accumulate into scope until a
			// non-numeric marker appears.
			if n, convErr := strconv.Atoi(tok.text); convErr == nil {
				scope = append(scope, n)
			} else if tok.text == "{" {
				p.lx.Push(tok)
				more, err := p.readCostList()
				if err != nil {
					return err
				}
				costs = more
			}
		}
	}

	if template != "" {
		return postTemplate(p.w, template, scope, tparams)
	}

	sizes := make([]int, len(scope))
	for i, v := range scope {
		sizes[i] = p.w.Var(v).InitDomainSize()
	}

	if shareOf != "" {
		shared, ok := p.shared[shareOf]
		if !ok {
			return &wcsp.StructuralError{Msg: fmt.Sprintf("function %q shares unknown table %q", funcName, shareOf)}
		}
		if !equalInts(shared.domainSizes, sizes) {
			return &wcsp.StructuralError{Msg: fmt.Sprintf("function %q shares table %q but scope arity/domain sizes %v do not match the original %v", funcName, shareOf, sizes, shared.domainSizes)}
		}
		costs = shared.costs
	}

	def := wcsp.MinCost
	if defaultCost != nil {
		def = *defaultCost
	}
	order := make([]wcsp.Tuple, 0)
	table := make(map[string]wcsp.Cost)
	if len(costs) > 0 {
		total := 1
		for _, s := range sizes {
			total *= s
		}
		if len(costs) == total {
			for idx, c := range costs {
				if c == def {
					continue
				}
				t := unindex(idx, sizes)
				order = append(order, t)
				table[t.Key()] = c
			}
		} else {
			// Sparse positional list: arity+1 entries per tuple (values
			// then cost), matching the legacy n-ary block shape.
			arity := len(scope)
			for i := 0; i+arity < len(costs)+1 && i+arity <= len(costs); i += arity + 1 {
				tuple := make(wcsp.Tuple, arity)
				for j := 0; j < arity; j++ {
					tuple[j] = int(costs[i+j])
				}
				cost := costs[i+arity]
				order = append(order, tuple)
				table[tuple.Key()] = cost
			}
		}
	}
	if err := postTable(p.w, scope, def, table, order); err != nil {
		return err
	}
	if len(costs) > 0 {
		p.shared[funcName] = cfnSharedTable{domainSizes: sizes, costs: costs}
	}
	return nil
}

// equalInts reports whether a and b have the same length and elements, in
// order.
func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (p *cfnParser) readScope() ([]int, error) {
	open, err := p.lx.Next()
	if err != nil {
		return nil, err
	}
	if open.text != "{" {
		return nil, &wcsp.FormatError{Line: open.line, Token: open.text, Msg: "expected scope block"}
	}
	var scope []int
	for {
		tok, err := p.lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.text == "}" {
			return scope, nil
		}
		idx := p.w.GetVarIndex(tok.text)
		if idx == p.w.NumberOfVariables() {
			n, convErr := strconv.Atoi(tok.text)
			if convErr != nil {
				return nil, &wcsp.FormatError{Line: tok.line, Token: tok.text, Msg: "unknown variable in scope"}
			}
			idx = n
		}
		scope = append(scope, idx)
	}
}

func (p *cfnParser) readCostValue() (wcsp.Cost, error) {
	tok, err := p.valueAfterOptionalColon()
	if err != nil {
		return 0, err
	}
	raw, err := wcsp.ParseDecimalCost(tok, p.opts.Precision)
	if err != nil {
		return 0, err
	}
	c, shift := signedToCost(raw)
	p.w.AddNegCost(shift)
	return c, nil
}

func (p *cfnParser) readCostList() ([]wcsp.Cost, error) {
	open, err := p.lx.Next()
	if err != nil {
		return nil, err
	}
	if open.text != "{" {
		return nil, &wcsp.FormatError{Line: open.line, Token: open.text, Msg: "expected a cost list block"}
	}
	var costs []wcsp.Cost
	for {
		tok, err := p.lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.text == "}" {
			return costs, nil
		}
		raw, err := wcsp.ParseDecimalCost(tok.text, p.opts.Precision)
		if err != nil {
			return nil, &wcsp.FormatError{Line: tok.line, Token: tok.text, Msg: err.Error()}
		}
		c, shift := signedToCost(raw)
		p.w.AddNegCost(shift)
		costs = append(costs, c)
	}
}

// readTemplateParams reads the "params" block of a global-constraint
// function declaration (spec §6.1/§6.2): a tag-keyed set of fields whose
// shape depends on the template, assembled here into the generic
// templateParams struct postTemplate dispatches on. Unknown tags are
// rejected rather than silently ignored, since a typo in a params block
// would otherwise silently decompose the wrong constraint.
func (p *cfnParser) readTemplateParams() (templateParams, error) {
	var tp templateParams
	open, err := p.lx.Next()
	if err != nil {
		return tp, err
	}
	if open.text != "{" {
		return tp, &wcsp.FormatError{Line: open.line, Token: open.text, Msg: "expected params block"}
	}
	for {
		tok, err := p.lx.Next()
		if err != nil {
			return tp, err
		}
		if tok.text == "}" {
			return tp, nil
		}
		switch tok.text {
		case "keyword":
			v, err := p.valueAfterOptionalColon()
			if err != nil {
				return tp, err
			}
			tp.keyword = v
		case "cost":
			v, err := p.readCostValue()
			if err != nil {
				return tp, err
			}
			tp.cost = v
		case "min":
			v, err := p.readTemplateInt()
			if err != nil {
				return tp, err
			}
			tp.min = v
		case "max":
			v, err := p.readTemplateInt()
			if err != nil {
				return tp, err
			}
			tp.max = v
		case "rhs":
			v, err := p.readTemplateInt()
			if err != nil {
				return tp, err
			}
			tp.rhs = int64(v)
		case "values":
			v, err := p.readIntList()
			if err != nil {
				return tp, err
			}
			tp.values = v
		case "coeffs":
			v, err := p.readIntList()
			if err != nil {
				return tp, err
			}
			coeffs := make([]int64, len(v))
			for i, c := range v {
				coeffs[i] = int64(c)
			}
			tp.coeffs = coeffs
		case "bounds":
			v, err := p.readCardinalityList()
			if err != nil {
				return tp, err
			}
			tp.cards = v
		default:
			return tp, &wcsp.FormatError{Line: tok.line, Token: tok.text, Msg: "unknown params tag"}
		}
	}
}

func (p *cfnParser) readTemplateInt() (int, error) {
	tok, err := p.valueAfterOptionalColon()
	if err != nil {
		return 0, err
	}
	return parseTemplateInt(tok)
}

func (p *cfnParser) readIntList() ([]int, error) {
	if err := p.optionalColon(); err != nil {
		return nil, err
	}
	open, err := p.lx.Next()
	if err != nil {
		return nil, err
	}
	if open.text != "{" {
		return nil, &wcsp.FormatError{Line: open.line, Token: open.text, Msg: "expected an integer list block"}
	}
	var out []int
	for {
		tok, err := p.lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.text == "}" {
			return out, nil
		}
		n, err := parseTemplateInt(tok.text)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
}

// readCardinalityList reads the "bounds" field of an sgcc/wgcc template
// as a flat list of (value, min, max) triples, one per distinct value being
// bounded. Per-record cost fields (the two `c` entries of a `[vNNcc]+`
// record) are not read: a list written in that five-field layout is
// consumed as triples.
func (p *cfnParser) readCardinalityList() ([]wcsp.Cardinality, error) {
	if err := p.optionalColon(); err != nil {
		return nil, err
	}
	open, err := p.lx.Next()
	if err != nil {
		return nil, err
	}
	if open.text != "{" {
		return nil, &wcsp.FormatError{Line: open.line, Token: open.text, Msg: "expected a bounds list block"}
	}
	var out []wcsp.Cardinality
	for {
		tok, err := p.lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.text == "}" {
			return out, nil
		}
		value, err := parseTemplateInt(tok.text)
		if err != nil {
			return nil, err
		}
		minTok, err := p.lx.Next()
		if err != nil {
			return nil, err
		}
		min, err := parseTemplateInt(minTok.text)
		if err != nil {
			return nil, err
		}
		maxTok, err := p.lx.Next()
		if err != nil {
			return nil, err
		}
		max, err := parseTemplateInt(maxTok.text)
		if err != nil {
			return nil, err
		}
		out = append(out, wcsp.Cardinality{Value: value, Min: min, Max: max})
	}
}

func unindex(idx int, sizes []int) wcsp.Tuple {
	t := make(wcsp.Tuple, len(sizes))
	for i := len(sizes) - 1; i >= 0; i-- {
		t[i] = idx % sizes[i]
		idx /= sizes[i]
	}
	return t
}
