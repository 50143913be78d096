// Package postings implements the set algebra over postings lists: sorted,
// duplicate-free sequences of article ids. Every operation is a linear merge
// and never modifies its inputs.
package postings

// List is an ascending, duplicate-free sequence of article ids.
type List []int

// And returns the ids present in both p and q.
func And(p, q List) List {
	result := make(List, 0, min(len(p), len(q)))
	i, j := 0, 0
	for i < len(p) && j < len(q) {
		switch {
		case p[i] == q[j]:
			result = append(result, p[i])
			i++
			j++
		case p[i] < q[j]:
			i++
		default:
			j++
		}
	}
	return result
}

// Or returns the ids present in p or q.
func Or(p, q List) List {
	result := make(List, 0, max(len(p), len(q)))
	i, j := 0, 0
	for i < len(p) && j < len(q) {
		switch {
		case p[i] == q[j]:
			result = append(result, p[i])
			i++
			j++
		case p[i] < q[j]:
			result = append(result, p[i])
			i++
		default:
			result = append(result, q[j])
			j++
		}
	}
	result = append(result, p[i:]...)
	result = append(result, q[j:]...)
	return result
}

// Complement returns the ids of universe that are absent from p.
func Complement(universe, p List) List {
	result := make(List, 0, max(len(universe)-len(p), 0))
	j := 0
	for _, id := range universe {
		for j < len(p) && p[j] < id {
			j++
		}
		if j < len(p) && p[j] == id {
			continue
		}
		result = append(result, id)
	}
	return result
}

// AndAll folds And over lists, shortest first so intermediate results stay
// small. It returns an empty list for no input.
func AndAll(lists ...List) List {
	if len(lists) == 0 {
		return List{}
	}
	ordered := make([]List, len(lists))
	copy(ordered, lists)
	for i := 1; i < len(ordered); i++ {
		for k := i; k > 0 && len(ordered[k]) < len(ordered[k-1]); k-- {
			ordered[k], ordered[k-1] = ordered[k-1], ordered[k]
		}
	}
	result := ordered[0]
	for _, l := range ordered[1:] {
		if len(result) == 0 {
			break
		}
		result = And(result, l)
	}
	return append(List{}, result...)
}

// OrAll folds Or over lists.
func OrAll(lists ...List) List {
	result := List{}
	for _, l := range lists {
		result = Or(result, l)
	}
	return result
}

// Contains reports whether id is in p using binary search.
func (p List) Contains(id int) bool {
	lo, hi := 0, len(p)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if p[mid] < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(p) && p[lo] == id
}
