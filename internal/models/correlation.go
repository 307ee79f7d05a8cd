package models

// CorrelationKey identifies an unordered pair of (subject, stat) legs
// whose pairwise correlation is being looked up or stored.
type CorrelationKey struct {
	A LegKey
	B LegKey
}

// Normalized returns the key with A and B ordered consistently so that
// (x,y) and (y,x) hash to the same lookup, matching the pair
// correlation's definition as an unordered association.
func (k CorrelationKey) Normalized() CorrelationKey {
	if k.A.SubjectID > k.B.SubjectID || (k.A.SubjectID == k.B.SubjectID && k.A.StatKind > k.B.StatKind) {
		return CorrelationKey{A: k.B, B: k.A}
	}
	return k
}

// PairCorrelation is a stored pairwise correlation between two leg
// subjects/stats. Rho must lie in (-0.999, 0.999); the diagonal case
// (A == B) is implicitly 1 and never stored.
type PairCorrelation struct {
	Key CorrelationKey
	Rho float64
}
