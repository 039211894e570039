package alerts

import "time"

// AlertType define el tier de prioridad de una alerta.
// @Enum urgent, warning, pending, compliant
type AlertType string

const (
	TypeUrgent    AlertType = "urgent"
	TypeWarning   AlertType = "warning"
	TypePending   AlertType = "pending"
	TypeCompliant AlertType = "compliant"
)

// Types lista los cuatro buckets fijos, en orden de prioridad.
// Grouped() siempre devuelve los cuatro aunque estén vacíos.
var Types = []AlertType{TypeUrgent, TypeWarning, TypePending, TypeCompliant}

func ValidType(t AlertType) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// Alert es el registro persistido de una alerta de compliance.
// El descarte es soft (IsDismissed), nunca se borra la fila.
type Alert struct {
	ID     string
	UserID string

	Type    AlertType
	Title   string
	Message string

	// ActionRequired describe el próximo paso exigido (opcional).
	ActionRequired string

	CanDismiss  bool
	IsDismissed bool

	// AnimalID asocia la alerta a un animal (opcional).
	// AnimalTag viene del join para display; no se persiste en alerts.
	AnimalID  string
	AnimalTag string

	CreatedAt time.Time
}

// EventKind distingue los dos tipos de evento del canal push.
// @Enum insert, update
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
)

// Event es lo que viaja por el canal push, con el registro completo.
type Event struct {
	Kind  EventKind
	Alert Alert
}
