package domain

import (
	"time"

	"github.com/google/uuid"
)

// Variation es una variante de un producto (tamaño, extra, etc.).
// Forma parte del agregado Product y se borra de forma lógica.
type Variation struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product es el agregado raíz del catálogo.
type Product struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Variations  []Variation `json:"variations"`
	IsDeleted   bool        `json:"is_deleted"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	EventRecorder `json:"-"`
}

// NewProduct crea un producto sin variaciones.
func NewProduct(name, description string, price float64) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (p *Product) AggregateID() uuid.UUID { return p.ID }

// AddVariation incorpora una variación al producto. El nombre debe ser
// único entre las variaciones activas.
func (p *Product) AddVariation(v Variation) error {
	for _, existing := range p.ActiveVariations() {
		if existing.Name == v.Name && existing.ID != v.ID {
			return NewValidation("variation name %q already exists with id %s", v.Name, existing.ID)
		}
	}
	p.Variations = append(p.Variations, v)
	p.UpdatedAt = time.Now().UTC()
	p.Record(VariationAdded{VariationID: v.ID, ProductID: p.ID})
	return nil
}

// RemoveVariation borra (lógicamente) la variación indicada.
func (p *Product) RemoveVariation(id uuid.UUID) error {
	for i := range p.Variations {
		if p.Variations[i].ID == id && !p.Variations[i].IsDeleted {
			p.Variations[i].IsDeleted = true
			p.Variations[i].UpdatedAt = time.Now().UTC()
			p.Record(VariationDeleted{VariationID: id})
			return nil
		}
	}
	return NewNotFound("variation", id.String())
}

// ActiveVariations devuelve las variaciones no borradas.
func (p *Product) ActiveVariations() []Variation {
	var out []Variation
	for _, v := range p.Variations {
		if !v.IsDeleted {
			out = append(out, v)
		}
	}
	return out
}

// VariationByID busca una variación activa por id.
func (p *Product) VariationByID(id uuid.UUID) *Variation {
	for i := range p.Variations {
		if p.Variations[i].ID == id && !p.Variations[i].IsDeleted {
			return &p.Variations[i]
		}
	}
	return nil
}
