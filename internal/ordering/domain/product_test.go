package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newVariation(productID uuid.UUID, name string, price float64) Variation {
	now := time.Now().UTC()
	return Variation{
		ID:        uuid.New(),
		ProductID: productID,
		Name:      name,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestProduct_AddVariation(t *testing.T) {
	p := NewProduct("Café", "Café de especialidad", 2.5)

	v := newVariation(p.ID, "Doble", 1.0)
	assert.NoError(t, p.AddVariation(v))
	assert.Len(t, p.ActiveVariations(), 1)

	events := p.PullEvents()
	assert.Len(t, events, 1)
	assert.Equal(t, v.ID, events[0].(VariationAdded).VariationID)

	// Nombre duplicado entre variaciones activas.
	err := p.AddVariation(newVariation(p.ID, "Doble", 1.5))
	assert.True(t, IsValidation(err))
	assert.Len(t, p.ActiveVariations(), 1)
	assert.Empty(t, p.PullEvents())
}

func TestProduct_AddVariation_NombreReutilizableTrasBorrado(t *testing.T) {
	p := NewProduct("Té", "", 2.0)
	v := newVariation(p.ID, "Grande", 0.5)
	assert.NoError(t, p.AddVariation(v))
	assert.NoError(t, p.RemoveVariation(v.ID))

	// El borrado es lógico y libera el nombre.
	assert.NoError(t, p.AddVariation(newVariation(p.ID, "Grande", 0.75)))
	assert.Len(t, p.ActiveVariations(), 1)
	assert.Len(t, p.Variations, 2)
}

func TestProduct_RemoveVariation(t *testing.T) {
	p := NewProduct("Bocadillo", "", 5.0)
	v := newVariation(p.ID, "XL", 2.0)
	assert.NoError(t, p.AddVariation(v))
	p.PullEvents()

	assert.NoError(t, p.RemoveVariation(v.ID))
	assert.Empty(t, p.ActiveVariations())
	assert.Nil(t, p.VariationByID(v.ID))

	events := p.PullEvents()
	assert.Len(t, events, 1)
	assert.Equal(t, v.ID, events[0].(VariationDeleted).VariationID)

	// Borrar dos veces es not found.
	err := p.RemoveVariation(v.ID)
	assert.True(t, IsNotFound(err))
}

func TestSeenSet_Semantica(t *testing.T) {
	var seen SeenSet[*Order]

	a := NewOrder(uuid.New(), uuid.New(), InHouse, nil, 1)
	b := NewOrder(uuid.New(), uuid.New(), TakeAway, nil, 2)

	a.Record(OrderCreated{OrderID: a.ID})
	b.Record(OrderCreated{OrderID: b.ID})

	// Marcar dos veces el mismo agregado es un no-op.
	seen.Mark(a)
	seen.Mark(b)
	seen.Mark(a)

	events := seen.Drain()
	assert.Len(t, events, 2)
	assert.Equal(t, a.ID, events[0].(OrderCreated).OrderID)
	assert.Equal(t, b.ID, events[1].(OrderCreated).OrderID)

	// Drenaje idempotente.
	assert.Empty(t, seen.Drain())

	// Forget descarta los eventos pendientes del agregado retirado.
	a.Record(OrderCreated{OrderID: a.ID})
	seen.Forget(a)
	assert.Empty(t, seen.Drain())
	assert.Empty(t, a.PullEvents())
}
