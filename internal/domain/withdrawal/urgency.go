package withdrawal

// Urgency clasifica los días restantes de retiro para priorización en UI.
// @Enum urgent, warning, normal
type Urgency string

const (
	UrgencyUrgent  Urgency = "urgent"
	UrgencyWarning Urgency = "warning"
	UrgencyNormal  Urgency = "normal"
)

// Thresholds define los cortes de clasificación.
// Son configuración (no constantes): los distintos consumidores históricos
// usaban ventanas de 1-7 días sin una función compartida, acá se unifica.
type Thresholds struct {
	// Urgent: daysLeft <= Urgent => urgent.
	Urgent int
	// Warning: Urgent < daysLeft <= Warning => warning.
	Warning int
}

// DefaultThresholds: urgente con 2 días o menos, warning hasta 7.
func DefaultThresholds() Thresholds {
	return Thresholds{Urgent: 2, Warning: 7}
}

// Classify mapea días restantes a un nivel de urgencia.
// Valores negativos (retiro ya vencido) cuentan como urgent:
// el animal sigue listado hasta que el check de compliance lo resuelva.
func (t Thresholds) Classify(daysLeft int) Urgency {
	switch {
	case daysLeft <= t.Urgent:
		return UrgencyUrgent
	case daysLeft <= t.Warning:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}
