package relayconn

import (
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

// Operator is a comparison operator of a keyset condition.
type Operator string

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"

	// operatorEq only appears in the equality prefix of a disjunct.
	operatorEq Operator = "="

	// operatorIsNull and operatorIsNotNull take no value.
	operatorIsNull    Operator = "IS NULL"
	operatorIsNotNull Operator = "IS NOT NULL"
)

type (
	tConjunct struct {
		Column   string
		Value    any
		Operator Operator
	}

	tDisjunct []tConjunct

	// tDNF represents the disjunctive normal form (DNF) of a logical expression.
	// Disjuncts are joined by OR, conjuncts inside a disjunct by AND:
	//
	//	DNF = (A11 AND A12) OR (A21 AND A22 AND A23)
	tDNF []tDisjunct
)

// toGORMExpression converts a conjunct into the condition "Column Operator ?".
//
// Example:
//
//	tConjunct = { Column: "id", Operator: "<", Value: 123}
//
// Result:
//
//	clause.Expr{SQL: "id < ?", Vars: [123]}
func (c tConjunct) toGORMExpression() clause.Expression {
	switch c.Operator {
	case operatorIsNull, operatorIsNotNull:
		return clause.Expr{SQL: fmt.Sprintf("%s %s", c.Column, c.Operator)}
	}

	return clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", c.Column, c.Operator),
		Vars: []any{parseAnyValue(c.Value)},
	}
}

// parseAnyValue turns RFC 3339 strings and byte slices into time.Time, so
// that timestamps read back from a driver as text compare as timestamps.
func parseAnyValue(v any) any {
	fnParseBytesToTimeOrValue := func(vBytes []byte) any {
		dst := time.Time{}
		err := dst.UnmarshalText(vBytes)
		if err == nil {
			return dst
		}

		return v
	}

	switch vt := v.(type) {
	case string:
		return fnParseBytesToTimeOrValue([]byte(vt))
	case []byte:
		return fnParseBytesToTimeOrValue(vt)
	default:
		return v
	}
}

// toGORMExpression joins the conjuncts of a disjunct with AND.
func (d tDisjunct) toGORMExpression() clause.Expression {
	andExpressions := make([]clause.Expression, 0, len(d))
	for _, conjunct := range d {
		andExpressions = append(andExpressions, conjunct.toGORMExpression())
	}

	switch len(andExpressions) {
	case 0:
		return nil
	case 1:
		return andExpressions[0]
	default:
		return clause.And(andExpressions...)
	}
}

// toGORMExpression joins the disjuncts of a DNF with OR. Empty disjuncts are
// skipped; an empty DNF yields nil.
func (d tDNF) toGORMExpression() clause.Expression {
	orExpressions := make([]clause.Expression, 0, len(d))

	for _, disjunct := range d {
		andExpressions := disjunct.toGORMExpression()
		if andExpressions == nil {
			continue
		}

		orExpressions = append(orExpressions, andExpressions)
	}

	switch len(orExpressions) {
	case 0:
		return nil
	case 1:
		return orExpressions[0]
	default:
		return clause.Or(orExpressions...)
	}
}
