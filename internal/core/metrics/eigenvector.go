package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/weftlabs/strata/internal/core/subgraph"
)

// eigenOutcome is the winning result of the eigenvector fallback chain,
// tagged with the strategy that produced it.
type eigenOutcome struct {
	values map[string]float64
	method string
}

// eigenvector runs the three-tier chain: closed-form eigendecomposition,
// then power iteration bounded by MaxPowerIterations, then normalized
// degree. The tiers form an explicit ordered list; the first strategy
// producing finite, defined values for every vertex wins. The chain
// never fails because the final tier is always defined.
func (e *Engine) eigenvector(sg *subgraph.Subgraph) eigenOutcome {
	strategies := []struct {
		name string
		fn   func(*subgraph.Subgraph) (map[string]float64, bool)
	}{
		{"eigen", e.eigenClosedForm},
		{"power", e.eigenPower},
		{"degree", func(sg *subgraph.Subgraph) (map[string]float64, bool) {
			return degreeCentrality(sg), true
		}},
	}
	for _, s := range strategies {
		if values, ok := s.fn(sg); ok && allFinite(values) {
			return eigenOutcome{values: values, method: s.name}
		}
	}
	// Unreachable: degreeCentrality is total.
	return eigenOutcome{values: degreeCentrality(sg), method: "degree"}
}

func allFinite(values map[string]float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// eigenClosedForm solves A'x = λx directly. A vertex is central when
// central vertices point at it, so the relevant operator is the
// transpose of the adjacency matrix. The tier reports failure when the
// dominant eigenvalue is not real, not strictly dominant, or numerically
// zero, and when the associated eigenvector cannot be oriented to a
// non-negative real vector.
func (e *Engine) eigenClosedForm(sg *subgraph.Subgraph) (map[string]float64, bool) {
	order := sg.Vertices()
	n := len(order)
	if n == 0 {
		return nil, false
	}

	index := make(map[string]int, n)
	for i, id := range order {
		index[id] = i
	}
	at := mat.NewDense(n, n, nil)
	for _, u := range order {
		for _, v := range sg.Successors(u) {
			at.Set(index[v], index[u], 1)
		}
	}

	var eig mat.Eigen
	if !eig.Factorize(at, mat.EigenRight) {
		return nil, false
	}
	values := eig.Values(nil)

	lead, leadAbs, secondAbs := 0, 0.0, 0.0
	for i, v := range values {
		a := cmplxAbs(v)
		if a > leadAbs {
			lead, leadAbs, secondAbs = i, a, leadAbs
		} else if a > secondAbs {
			secondAbs = a
		}
	}
	tol := e.Tolerance
	if leadAbs <= tol {
		return nil, false // nilpotent adjacency, e.g. a DAG
	}
	if math.Abs(imagPart(values[lead])) > tol || leadAbs-secondAbs <= tol {
		return nil, false // complex or non-dominant leading eigenvalue
	}

	var vectors mat.CDense
	eig.VectorsTo(&vectors)
	vec := make([]float64, n)
	for i := 0; i < n; i++ {
		c := vectors.At(i, lead)
		if math.Abs(imag(c)) > tol {
			return nil, false
		}
		vec[i] = real(c)
	}

	// Orient so the dominant component is positive; mixed signs beyond
	// tolerance mean the Perron vector assumption does not hold.
	sum := 0.0
	for _, v := range vec {
		sum += v
	}
	if sum < 0 {
		for i := range vec {
			vec[i] = -vec[i]
		}
	}
	norm := 0.0
	for i, v := range vec {
		if v < -tol {
			return nil, false
		}
		if v < 0 {
			vec[i] = 0
			v = 0
		}
		norm += v * v
	}
	if norm <= 0 {
		return nil, false
	}
	norm = math.Sqrt(norm)

	result := make(map[string]float64, n)
	for i, id := range order {
		result[id] = vec[i] / norm
	}
	return result, true
}

// eigenPower is the bounded power-iteration tier. It reports failure
// when the iteration cap is reached without convergence; the cap keeps
// the CPU-bound loop from running away on periodic structures.
func (e *Engine) eigenPower(sg *subgraph.Subgraph) (map[string]float64, bool) {
	order := sg.Vertices()
	n := len(order)
	if n == 0 {
		return nil, false
	}

	x := make(map[string]float64, n)
	for _, id := range order {
		x[id] = 1.0 / float64(n)
	}

	for iter := 0; iter < e.MaxPowerIterations; iter++ {
		last := x
		x = make(map[string]float64, n)
		// x = (I + A')last: the identity shift damps oscillation on
		// near-periodic graphs.
		for _, id := range order {
			x[id] = last[id]
		}
		for _, u := range order {
			for _, v := range sg.Successors(u) {
				x[v] += last[u]
			}
		}

		norm := 0.0
		for _, v := range x {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1
		}
		change := 0.0
		for _, id := range order {
			x[id] /= norm
			change += math.Abs(x[id] - last[id])
		}
		if change < float64(n)*e.Tolerance {
			return x, true
		}
	}
	return nil, false
}

func cmplxAbs(c complex128) float64 { return math.Hypot(real(c), imag(c)) }

func imagPart(c complex128) float64 { return imag(c) }
