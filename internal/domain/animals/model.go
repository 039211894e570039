package animals

import "time"

// Species define las especies de producción soportadas.
// Coinciden con la tabla de factores del cálculo de retiro.
// @Enum cattle, sheep, goat, pig, poultry
type Species string

const (
	SpeciesCattle  Species = "cattle"
	SpeciesSheep   Species = "sheep"
	SpeciesGoat    Species = "goat"
	SpeciesPig     Species = "pig"
	SpeciesPoultry Species = "poultry"
)

func ValidSpecies(s Species) bool {
	switch s {
	case SpeciesCattle, SpeciesSheep, SpeciesGoat, SpeciesPig, SpeciesPoultry:
		return true
	}
	return false
}

// Animal representa una cabeza registrada en el establecimiento.
type Animal struct {
	ID          string
	OwnerUserID string

	// TagNumber es la caravana/identificador visible del animal;
	// es lo que se muestra junto a alertas y tratamientos.
	TagNumber string
	Name      string

	Species Species
	Breed   string

	BirthDate *time.Time
	Notes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}
