package treatments

import "time"

// Treatment registra una administración de antimicrobiano sobre un
// animal, junto con el período de retiro calculado al momento del
// registro. El retiro queda congelado acá: recalcular después con
// otras tablas no cambia lo ya registrado.
type Treatment struct {
	ID       string
	AnimalID string

	// UserID es el dueño del animal al momento del registro;
	// scopea alertas y listados.
	UserID string

	DrugName string
	// Dosage es texto libre tipo "5mg/kg"; solo el primer token
	// numérico participa del cálculo.
	Dosage string
	Reason string

	AdministeredAt time.Time

	WithdrawalDays  int
	WithdrawalUntil time.Time

	CreatedAt time.Time
}
