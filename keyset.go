package relayconn

import (
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// keyset describes the position of one record under an ordering. It holds one
// element per ordering column:
//
//	[(C1, O1, V1), (C2, O2, V2)... (Cn, On, Vn)]
//
// where Vi is the record's value of Ci and Oi the operator selecting the
// values placed before Vi.
//
// IMPORTANT:
// The ordering MUST end with a unique column, otherwise records sharing all
// ordering values are not counted consistently.
type keyset []keysetElement

type keysetElement struct {
	Column   string
	Value    any
	Operator Operator
	// Nullable is set when the column may hold NULL.
	Nullable bool
	// NullsFirst is set when NULL is placed before every non-null value in
	// the direction of this element.
	NullsFirst bool
}

// newKeyset reads the ordering values of a record from values, keyed by
// unqualified column name. nullsLow tells whether the database sorts NULL
// below every non-null value.
func newKeyset(orderings Orderings, values map[string]any, nullable func(column string) bool, nullsLow bool) (keyset, error) {
	ret := make(keyset, 0, len(orderings))
	for _, orderBy := range orderings {
		value, ok := values[orderBy.name()]
		if !ok {
			return nil, fmt.Errorf("cannot find value of ordering column '%s'", orderBy.Column)
		}

		ret = append(ret, keysetElement{
			Column:     orderBy.Column,
			Value:      value,
			Operator:   orderBy.Direction.Preceding(),
			Nullable:   value == nil || nullable(orderBy.name()),
			NullsFirst: (orderBy.Direction == DirectionASC) == nullsLow,
		})
	}

	return ret, nil
}

// Preceding applies to db the condition selecting every record placed before
// the keyset position.
func (k keyset) Preceding(db *gorm.DB) *gorm.DB {
	exp := k.toDNF().toGORMExpression()
	if exp == nil {
		if len(k) > 0 {
			return db.Where("1 = 0")
		}

		return db
	}

	return db.Clauses(exp)
}

// toDNF inflates the keyset into a filter. For two non-null columns:
//
//	(C1 O1 V1) or (C1 = V1 and C2 O2 V2)
//
// which selects exactly the records ordered before the position. A nullable
// column placing NULL first adds "Ci IS NULL" next to "Ci Oi Vi". A NULL
// value compares with "IS NULL" in the equality prefix and selects
// "Ci IS NOT NULL" when NULL is placed last.
func (k keyset) toDNF() tDNF {
	if len(k) == 0 {
		return nil
	}

	dnf := make(tDNF, 0, len(k))
	for i := range k {
		equalities := lo.Map(k[:i], func(item keysetElement, _ int) tConjunct {
			return item.toConjunctWithEqualityCondition()
		})

		for _, conjunct := range k[i].precedingConjuncts() {
			disjunct := make(tDisjunct, 0, len(equalities)+1)
			disjunct = append(disjunct, equalities...)
			disjunct = append(disjunct, conjunct)

			dnf = append(dnf, disjunct)
		}
	}

	return dnf
}

// precedingConjuncts returns the alternative conditions placing a column
// value before the element's value.
func (e keysetElement) precedingConjuncts() []tConjunct {
	if e.Value == nil {
		if e.NullsFirst {
			return nil
		}

		return []tConjunct{{Column: e.Column, Operator: operatorIsNotNull}}
	}

	ret := []tConjunct{{Column: e.Column, Value: e.Value, Operator: e.Operator}}
	if e.Nullable && e.NullsFirst {
		ret = append(ret, tConjunct{Column: e.Column, Operator: operatorIsNull})
	}

	return ret
}

func (e keysetElement) toConjunctWithEqualityCondition() tConjunct {
	if e.Value == nil {
		return tConjunct{Column: e.Column, Operator: operatorIsNull}
	}

	return tConjunct{
		Column:   e.Column,
		Value:    e.Value,
		Operator: operatorEq,
	}
}
