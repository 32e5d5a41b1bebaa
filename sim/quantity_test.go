package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantities_Get_MissingKeyIsZero(t *testing.T) {
	q := NewQuantities()
	assert.Equal(t, 0, q.Get("A"))
}

func TestQuantities_SetAndSum(t *testing.T) {
	q := NewQuantities()
	q.Set("A", 3)
	q.Set("B", 4)
	q.Add("A", 2)

	assert.Equal(t, 5, q.Get("A"))
	assert.Equal(t, 9, q.Sum())
}

func TestQuantities_Items_PreserveInsertionOrder(t *testing.T) {
	// GIVEN keys inserted in a fixed order
	q := NewQuantities()
	q.Set("C", 1)
	q.Set("A", 2)
	q.Set("B", 3)
	q.Add("C", 1) // update must not move the key

	// WHEN iterating
	items := q.Items()

	// THEN insertion order is preserved
	want := []QuantityItem{{"C", 2}, {"A", 2}, {"B", 3}}
	assert.Equal(t, want, items)
}

func TestQuantities_PlusMinusTimes(t *testing.T) {
	a := QuantitiesFrom(QuantityItem{"A", 5}, QuantityItem{"B", 2})
	b := QuantitiesFrom(QuantityItem{"A", 3}, QuantityItem{"C", 1})

	sum := a.Plus(b)
	assert.Equal(t, 8, sum.Get("A"))
	assert.Equal(t, 2, sum.Get("B"))
	assert.Equal(t, 1, sum.Get("C"))

	diff := a.Minus(b)
	assert.Equal(t, 2, diff.Get("A"))
	assert.Equal(t, -1, diff.Get("C"))

	triple := a.Times(3)
	assert.Equal(t, 15, triple.Get("A"))
	assert.Equal(t, 6, triple.Get("B"))

	// operands are untouched
	assert.Equal(t, 5, a.Get("A"))
	assert.Equal(t, 0, a.Get("C"))
}

func TestQuantities_Clone_IsIndependent(t *testing.T) {
	a := QuantitiesFrom(QuantityItem{"A", 5})
	b := a.Clone()
	b.Add("A", 1)

	assert.Equal(t, 5, a.Get("A"))
	assert.Equal(t, 6, b.Get("A"))
}
