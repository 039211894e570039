package bus

import "sync"

// Tamaño del buffer por suscriptor. Un suscriptor lento no bloquea
// al publisher: si el buffer se llena, el evento se descarta y el
// consumidor se recupera por su ciclo de resuscripción + reload.
const subscriberBuffer = 64

// Bus es un pub/sub in-process con topics por string (acá: userID).
// Reemplaza al canal realtime del backend hosteado en despliegues
// single-node; los adapters de push lo exponen por WebSocket.
type Bus[T any] struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]chan T
}

func New[T any]() *Bus[T] {
	return &Bus[T]{
		subs: make(map[string]map[int]chan T),
	}
}

// Subscribe registra un consumidor para un topic y devuelve su canal
// junto con la función de cancelación. Cancelar cierra el canal;
// cancelar dos veces es un no-op.
func (b *Bus[T]) Subscribe(topic string) (<-chan T, func()) {
	ch := make(chan T, subscriberBuffer)

	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan T)
	}
	b.subs[topic][id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if set, ok := b.subs[topic]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(b.subs, topic)
				}
			}
			b.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Publish entrega v a todos los suscriptores del topic, sin bloquear.
func (b *Bus[T]) Publish(topic string, v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[topic] {
		select {
		case ch <- v:
		default:
			// suscriptor saturado, se descarta
		}
	}
}

// Subscribers devuelve cuántos consumidores tiene un topic (para tests/ops).
func (b *Bus[T]) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
