package models

// Catalog entities are shared lookup tables referenced by name from many assets.
// Names are unique modulo case; rows are created lazily by the import path and
// never deleted by it.

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Model may be created before its category is known; CategoryID stays nil
// until a later import supplies one.
type Model struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	CategoryID *int   `json:"category_id,omitempty"`
}

// Recipient is keyed by (name, department), not name alone.
type Recipient struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

type Software struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PeripheralType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
