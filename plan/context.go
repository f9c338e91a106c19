package plan

import (
	"github.com/roach88/retort/entity"
	"github.com/roach88/retort/network"
)

// Context is the read surface a calculator or predicate observes: the
// committed network overlaid with the metadata staged for the candidate's
// own products and reaction. All reads within one step see the state as
// it was when the step began; writes from the same step become visible
// only to later steps.
type Context struct {
	net  *network.Network
	cand entity.Candidate

	// Staged metadata, per product ordinal and for the reaction record.
	productMeta []map[string]any
	rxnMeta     map[string]any
}

// Candidate returns the candidate under analysis.
func (rc *Context) Candidate() entity.Candidate { return rc.cand }

// Network returns the committed network. Calculators may read entities
// through it but must route all writes through returned Write values.
func (rc *Context) Network() *network.Network { return rc.net }

// Molecule reads committed molecule metadata.
func (rc *Context) Molecule(ref entity.MolRef, key string) (any, bool) {
	return rc.net.MolMeta.Get(int(ref), key)
}

// Operator reads committed operator metadata.
func (rc *Context) Operator(ref entity.OpRef, key string) (any, bool) {
	return rc.net.OpMeta.Get(int(ref), key)
}

// Product reads metadata staged on the i-th candidate product. If the
// product text already exists as a committed molecule, its committed
// metadata is consulted as a fallback so calculators see rediscovered
// molecules consistently.
func (rc *Context) Product(i int, key string) (any, bool) {
	if i < 0 || i >= len(rc.productMeta) {
		return nil, false
	}
	if v, ok := rc.productMeta[i][key]; ok {
		return v, true
	}
	if ref, ok := rc.net.LookupMolecule(rc.cand.Products[i].Key()); ok {
		return rc.net.MolMeta.Get(int(ref), key)
	}
	return nil, false
}

// Reaction reads metadata staged on the candidate reaction record.
func (rc *Context) Reaction(key string) (any, bool) {
	v, ok := rc.rxnMeta[key]
	return v, ok
}

// clone snapshots the staged overlay so a whole step reads one consistent
// state while its writes accumulate elsewhere.
func (rc *Context) clone() *Context {
	snap := &Context{
		net:         rc.net,
		cand:        rc.cand,
		productMeta: make([]map[string]any, len(rc.productMeta)),
		rxnMeta:     make(map[string]any, len(rc.rxnMeta)),
	}
	for i, m := range rc.productMeta {
		snap.productMeta[i] = make(map[string]any, len(m))
		for k, v := range m {
			snap.productMeta[i][k] = v
		}
	}
	for k, v := range rc.rxnMeta {
		snap.rxnMeta[k] = v
	}
	return snap
}

func newContext(net *network.Network, cand entity.Candidate) *Context {
	rc := &Context{
		net:         net,
		cand:        cand,
		productMeta: make([]map[string]any, len(cand.Products)),
		rxnMeta:     make(map[string]any),
	}
	for i := range rc.productMeta {
		rc.productMeta[i] = make(map[string]any)
	}
	return rc
}
