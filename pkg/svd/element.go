package svd

// ElementKind tags the variant held by an Element.
type ElementKind int

const (
	KindInvalid ElementKind = iota
	KindRegister
	KindCluster
)

func (k ElementKind) String() string {
	switch k {
	case KindRegister:
		return "register"
	case KindCluster:
		return "cluster"
	default:
		return "invalid"
	}
}

// Element is a child of a peripheral or cluster. Exactly one of Register and
// Cluster is set.
type Element struct {
	Register *Register
	Cluster  *Cluster
}

// RegisterElement wraps r as an Element.
func RegisterElement(r *Register) Element {
	return Element{Register: r}
}

// ClusterElement wraps c as an Element.
func ClusterElement(c *Cluster) Element {
	return Element{Cluster: c}
}

// Kind reports which variant e holds.
func (e Element) Kind() ElementKind {
	switch {
	case e.Register != nil && e.Cluster == nil:
		return KindRegister
	case e.Cluster != nil && e.Register == nil:
		return KindCluster
	default:
		return KindInvalid
	}
}

// Name returns the name of the wrapped register or cluster.
func (e Element) Name() string {
	switch e.Kind() {
	case KindRegister:
		return e.Register.Name
	case KindCluster:
		return e.Cluster.Name
	}
	return ""
}

// BaseAddress returns the absolute address of the wrapped node.
func (e Element) BaseAddress() uint64 {
	switch e.Kind() {
	case KindRegister:
		return e.Register.BaseAddress
	case KindCluster:
		return e.Cluster.BaseAddress
	}
	return 0
}

// AddressOffset returns the offset of the wrapped node relative to its parent.
func (e Element) AddressOffset() uint64 {
	switch e.Kind() {
	case KindRegister:
		return e.Register.AddressOffset
	case KindCluster:
		return e.Cluster.AddressOffset
	}
	return 0
}

// alternateGroup returns the alternate group of a register. Clusters have none.
func (e Element) alternateGroup() (string, bool) {
	if e.Kind() != KindRegister || e.Register.AlternateGroup == "" {
		return "", false
	}
	return e.Register.AlternateGroup, true
}
