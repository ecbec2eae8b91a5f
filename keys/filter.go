package keys

// FilterOp identifies a Filter's comparison kind. Filter is a closed sum
// type over these: no operator overloading, every combination is an
// explicit, named value.
type FilterOp int

const (
	OpLenGt FilterOp = iota
	OpLenLt
	OpLenGe
	OpLenLe
	OpLenEq
	OpPrefixEq
	OpAnd
)

// Filter is a single filter expression or an And-combination of others.
// Construct one with the LenGt/.../PrefixEq/And functions below; do not
// build a Filter literal directly.
type Filter struct {
	op       FilterOp
	n        int
	prefix   string
	children []Filter
}

func LenGt(n int) Filter    { return Filter{op: OpLenGt, n: n} }
func LenLt(n int) Filter    { return Filter{op: OpLenLt, n: n} }
func LenGe(n int) Filter    { return Filter{op: OpLenGe, n: n} }
func LenLe(n int) Filter    { return Filter{op: OpLenLe, n: n} }
func LenEq(n int) Filter    { return Filter{op: OpLenEq, n: n} }
func PrefixEq(s string) Filter { return Filter{op: OpPrefixEq, prefix: s} }

// And combines filters with conjunction; all must hold.
func And(filters ...Filter) Filter {
	return Filter{op: OpAnd, children: filters}
}

// Match evaluates the filter against one entry.
func (f Filter) Match(name string, length int) bool {
	switch f.op {
	case OpLenGt:
		return length > f.n
	case OpLenLt:
		return length < f.n
	case OpLenGe:
		return length >= f.n
	case OpLenLe:
		return length <= f.n
	case OpLenEq:
		return length == f.n
	case OpPrefixEq:
		return len(name) >= len(f.prefix) && name[:len(f.prefix)] == f.prefix
	case OpAnd:
		for _, c := range f.children {
			if !c.Match(name, length) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
