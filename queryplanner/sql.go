package queryplanner

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/fuel-indexer-go/indexer/catalog"
)

// Render composes the final `SELECT json_build_object(...) FROM ... INNER
// JOIN ... WHERE ... ORDER BY ... LIMIT ...` statement for p.
func (p *Plan) Render() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s.%s %s", p.Projection, p.Schema, p.Table, p.RootAlias)
	for _, j := range p.Joins {
		b.WriteString(" ")
		b.WriteString(j)
	}

	clause, err := RenderWhere(p.Where, p.Order, p.Limit)
	if err != nil {
		return "", err
	}
	if clause != "" {
		b.WriteString(" ")
		b.WriteString(clause)
	}
	return b.String(), nil
}

// quoteJSONKey renders a json_build_object(...) key as a SQL string
// literal, reusing catalog.Literal's escaping rather than duplicating it.
func quoteJSONKey(key string) (string, error) {
	return catalog.Literal(catalog.NewCharfield(key))
}

func hexDecode(raw string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(raw, "0x"))
}
