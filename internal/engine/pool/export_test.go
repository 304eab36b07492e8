package pool

// Stats reports the pool's bookkeeping. Exported for tests only.
func (p *Pool) Stats() (live, idle, pending, inFlight int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live, len(p.idle), len(p.pending), p.inFlight
}
