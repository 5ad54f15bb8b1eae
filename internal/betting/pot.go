package betting

// Pot is one contribution layer. Eligible lists the non-folded seats
// that paid into the layer, in turn order; folded contributors' chips
// stay in the pot but they cannot win it.
type Pot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
}

// Total sums every pot's amount
func Total(pots []Pot) int {
	sum := 0
	for _, p := range pots {
		sum += p.Amount
	}
	return sum
}

// BuildPots layers contributions into pots. Each iteration takes the
// smallest positive remaining contribution L, moves L from every seat
// that still has chips in, and emits one pot of L times the number of
// contributors. A seat shorter than a later layer is simply absent from
// it, which is exactly the side-pot rule.
func BuildPots(order []string, contribs map[string]int, folded map[string]bool) []Pot {
	remaining := make(map[string]int, len(contribs))
	for id, c := range contribs {
		if c > 0 {
			remaining[id] = c
		}
	}

	var pots []Pot
	for len(remaining) > 0 {
		layer := 0
		for _, c := range remaining {
			if layer == 0 || c < layer {
				layer = c
			}
		}

		amount := 0
		eligible := make([]string, 0, len(remaining))
		for _, id := range order {
			c, in := remaining[id]
			if !in {
				continue
			}
			amount += layer
			if !folded[id] {
				eligible = append(eligible, id)
			}
			if c == layer {
				delete(remaining, id)
			} else {
				remaining[id] = c - layer
			}
		}
		pots = append(pots, Pot{Amount: amount, Eligible: eligible})
	}
	return pots
}
