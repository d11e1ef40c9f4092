/*
Package wcsp gives access to a Weighted Constraint Satisfaction Problem
model: a finite set of variables with finite domains, a set of cost
functions over subsets of those variables, and a global lower/upper bound
on the total cost.

No matter which surface syntax (see package formats) produced it, a WCSP
is built the same way: variables are created through the registry, then
cost functions are posted through the Builder API, which performs cost
rescaling, negative-cost shifting and overflow-safe saturation so that the
resulting network's stored costs are always non-negative and never above
the reserved Top sentinel (a Top entry marks a forbidden tuple).

Describing a problem

A caller builds a problem directly against the Builder API:

	w := wcsp.New("my-problem")
	x, err := w.MakeEnumeratedVariable("x", 3)
	if err != nil {
		log.Fatal(err)
	}
	y, err := w.MakeEnumeratedVariable("y", 3)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := w.PostBinary(x, y, []wcsp.Cost{0, 1, 1, 1, 0, 1, 1, 1, 0}); err != nil {
		log.Fatal(err)
	}

after which w.Lb, w.Ub and w.NegCost describe the problem's bounds, and
w.Constraints holds every posted cost function.

Search, full local-consistency enforcement and variable/value ordering
heuristics are not part of this package: they are the job of an external
branch-and-bound driver that consumes the network this package builds.
*/
package wcsp
