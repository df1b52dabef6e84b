package job

// Gate is the cooperative-cancellation checkpoint. It never interrupts an
// in-flight stage; the runner consults it between stages (and atomically
// on every write, via Registry.PutIfNotTerminal) so a stop request only
// prevents the next stage from starting.
type Gate struct {
	reg *Registry
}

func NewGate(reg *Registry) *Gate {
	return &Gate{reg: reg}
}

// Stopped reports whether a terminal stopped record has been written for
// id. A plain registry read; it never blocks.
func (g *Gate) Stopped(id string) bool {
	rec, ok := g.reg.Get(id)
	return ok && rec.Status == StatusStopped
}
