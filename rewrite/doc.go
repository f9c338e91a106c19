// Package rewrite is a self-contained reference implementation of the
// engine's opaque collaborators over NFC-normalized strings: molecules are
// canonical strings, operators are fixed-arity pattern/template rewrite
// rules, and Transform applies rules deterministically.
//
// It exists so the engine can be exercised, tested, and demonstrated
// end-to-end without a chemistry toolkit; production users supply their
// own Molecule/Operator/Transform implementations.
package rewrite
