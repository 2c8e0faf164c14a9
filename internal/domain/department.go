package domain

// Department routes tickets to the agents that belong to it.
type Department struct {
	ID   string
	Name string
}

// DefaultDepartments is the starter set seeded into an empty store.
var DefaultDepartments = []string{"Technical", "Finance", "Marketing", "Others"}
