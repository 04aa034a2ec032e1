package domain

import "github.com/google/uuid"

// Aggregate es toda entidad con identidad propia y cola privada de eventos.
type Aggregate interface {
	AggregateID() uuid.UUID
	PullEvents() []Event
}

// EventRecorder implementa la cola privada de eventos de un agregado.
// La cola es append-only durante los métodos de negocio y solo la vacía
// el Unit of Work (vía PullEvents) al recolectar.
type EventRecorder struct {
	events []Event
}

// Record encola un evento pendiente de publicar.
func (r *EventRecorder) Record(e Event) {
	r.events = append(r.events, e)
}

// PullEvents vacía la cola en orden FIFO. Tras la llamada la cola queda vacía,
// por lo que una segunda recolección no re-emite nada.
func (r *EventRecorder) PullEvents() []Event {
	evts := r.events
	r.events = nil
	return evts
}

// SeenSet registra los agregados que un repositorio ha tocado durante un
// Unit of Work. Semántica de conjunto por identidad: marcar dos veces el
// mismo agregado es un no-op, y el drenaje lo visita una sola vez en orden
// de inserción.
type SeenSet[T Aggregate] struct {
	seen []T
	ids  map[uuid.UUID]struct{}
}

// Mark añade el agregado al conjunto si no estaba ya.
func (s *SeenSet[T]) Mark(a T) {
	if s.ids == nil {
		s.ids = make(map[uuid.UUID]struct{})
	}
	if _, ok := s.ids[a.AggregateID()]; ok {
		return
	}
	s.ids[a.AggregateID()] = struct{}{}
	s.seen = append(s.seen, a)
}

// Forget retira el agregado del conjunto (p.ej. tras un delete). Si aún
// tenía eventos pendientes se drenan y descartan para no emitirlos después.
func (s *SeenSet[T]) Forget(a T) {
	id := a.AggregateID()
	if _, ok := s.ids[id]; !ok {
		return
	}
	a.PullEvents()
	delete(s.ids, id)
	for i, other := range s.seen {
		if other.AggregateID() == id {
			s.seen = append(s.seen[:i], s.seen[i+1:]...)
			break
		}
	}
}

// Drain vacía las colas de todos los agregados vistos, en orden de inserción.
func (s *SeenSet[T]) Drain() []Event {
	var out []Event
	for _, a := range s.seen {
		out = append(out, a.PullEvents()...)
	}
	return out
}
