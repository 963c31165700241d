package filters

import (
	"strconv"
	"strings"

	"github.com/google/objectfilter/types"
)

// LiteralToString renders a compiled operand back to query syntax,
// the Node.ToString() counterpart to ast.Literal.ToString() (kept
// separate since by compile time a literal is a plain Go value, not
// an ast.Literal shell anymore).
func LiteralToString(v types.Any) string {
	switch t := v.(type) {
	case string:
		return quoteString(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(t)
	case []types.Any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = LiteralToString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			b.WriteString("\\'")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
