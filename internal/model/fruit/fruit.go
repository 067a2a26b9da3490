package fruit

// Fruit is a single inventory item exposed over the API.
type Fruit struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Draft is an accepted create payload that has not been assigned an id yet.
type Draft struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price"`
}
