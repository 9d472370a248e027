package svd

// ResolveAddresses sets the absolute BaseAddress of every register and cluster
// below p: each node's base is its parent's base plus its own AddressOffset.
func (p *Peripheral) ResolveAddresses() {
	resolveElements(p.BaseAddress, p.Elements)
}

func resolveElements(base uint64, es []Element) {
	for _, e := range es {
		switch e.Kind() {
		case KindRegister:
			e.Register.BaseAddress = base + e.Register.AddressOffset
		case KindCluster:
			e.Cluster.BaseAddress = base + e.Cluster.AddressOffset
			resolveElements(e.Cluster.BaseAddress, e.Cluster.Elements)
		}
	}
}

// CountRegisters returns the number of registers below p, including those
// nested in clusters.
func (p *Peripheral) CountRegisters() int {
	return countRegisters(p.Elements)
}

func countRegisters(es []Element) int {
	n := 0
	for _, e := range es {
		switch e.Kind() {
		case KindRegister:
			n++
		case KindCluster:
			n += countRegisters(e.Cluster.Elements)
		}
	}
	return n
}
