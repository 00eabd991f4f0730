// Package diff computes positional patch operations between two versions of
// the station list, keyed by station ID.
package diff

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/five82/tuner/internal/station"
)

// Kind identifies a patch operation.
type Kind int

const (
	Insert Kind = iota
	Remove
	Move
	ChangeContent
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	case Move:
		return "move"
	case ChangeContent:
		return "change"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Op is one positional instruction. Positions refer to the list as it is
// when the op is applied, after every earlier op in the sequence.
//
//   - Insert: Record is placed at To.
//   - Remove: the record at From is dropped.
//   - Move: the record at From is taken out, then re-inserted at To.
//   - ChangeContent: the record at To is replaced by Record; Fields lists
//     what differs so a row can be refreshed partially.
type Op struct {
	Kind   Kind
	From   int
	To     int
	Record station.Record
	Fields station.Field
}

func (o Op) String() string {
	switch o.Kind {
	case Insert:
		return fmt.Sprintf("insert(%d, %s)", o.To, o.Record.ID)
	case Remove:
		return fmt.Sprintf("remove(%d)", o.From)
	case Move:
		return fmt.Sprintf("move(%d, %d)", o.From, o.To)
	case ChangeContent:
		return fmt.Sprintf("change(%d, %s)", o.To, o.Fields)
	default:
		return o.Kind.String()
	}
}

// Compute returns the ops that turn a view of prev into next. Both lists
// must have unique IDs. The result is deterministic: removals from the back,
// then moves and inserts in next-list order, then content changes.
func Compute(prev, next []station.Record) []Op {
	nextIdx := indexByID(next)
	var ops []Op

	cur := make([]string, 0, len(prev))
	for _, r := range prev {
		cur = append(cur, r.ID)
	}
	for i := len(prev) - 1; i >= 0; i-- {
		if _, ok := nextIdx[prev[i].ID]; !ok {
			ops = append(ops, Op{Kind: Remove, From: i})
			cur = append(cur[:i], cur[i+1:]...)
		}
	}

	// want is next restricted to the records that survived from prev.
	curIdx := make(map[string]int, len(cur))
	for i, id := range cur {
		curIdx[id] = i
	}
	want := lo.Filter(next, func(r station.Record, _ int) bool {
		_, ok := curIdx[r.ID]
		return ok
	})
	stable := stableSet(want, curIdx)

	for k, r := range want {
		if stable[r.ID] {
			continue
		}
		from := position(cur, r.ID)
		cur = append(cur[:from], cur[from+1:]...)
		to := 0
		if k > 0 {
			to = position(cur, want[k-1].ID) + 1
		}
		cur = append(cur[:to], append([]string{r.ID}, cur[to:]...)...)
		if from != to {
			ops = append(ops, Op{Kind: Move, From: from, To: to})
		}
	}

	for t, r := range next {
		if _, ok := curIdx[r.ID]; !ok {
			ops = append(ops, Op{Kind: Insert, To: t, Record: r})
		}
	}

	prevIdx := indexByID(prev)
	for t, r := range next {
		i, ok := prevIdx[r.ID]
		if !ok {
			continue
		}
		if fields := station.Changed(prev[i], r); fields != station.FieldNone {
			ops = append(ops, Op{Kind: ChangeContent, To: t, Record: r, Fields: fields})
		}
	}
	return ops
}

// Apply replays ops on a copy of records.
func Apply(records []station.Record, ops []Op) ([]station.Record, error) {
	out := station.Clone(records)
	for n, op := range ops {
		switch op.Kind {
		case Insert:
			if op.To < 0 || op.To > len(out) {
				return nil, fmt.Errorf("op %d %s: position out of range (len %d)", n, op, len(out))
			}
			out = append(out[:op.To], append([]station.Record{op.Record}, out[op.To:]...)...)
		case Remove:
			if op.From < 0 || op.From >= len(out) {
				return nil, fmt.Errorf("op %d %s: position out of range (len %d)", n, op, len(out))
			}
			out = append(out[:op.From], out[op.From+1:]...)
		case Move:
			if op.From < 0 || op.From >= len(out) || op.To < 0 || op.To >= len(out) {
				return nil, fmt.Errorf("op %d %s: position out of range (len %d)", n, op, len(out))
			}
			moved := out[op.From]
			out = append(out[:op.From], out[op.From+1:]...)
			out = append(out[:op.To], append([]station.Record{moved}, out[op.To:]...)...)
		case ChangeContent:
			if op.To < 0 || op.To >= len(out) {
				return nil, fmt.Errorf("op %d %s: position out of range (len %d)", n, op, len(out))
			}
			if out[op.To].ID != op.Record.ID {
				return nil, fmt.Errorf("op %d %s: record at position is %s", n, op, out[op.To].ID)
			}
			out[op.To] = op.Record
		default:
			return nil, fmt.Errorf("op %d: unknown kind %s", n, op.Kind)
		}
	}
	return out, nil
}

func indexByID(records []station.Record) map[string]int {
	idx := make(map[string]int, len(records))
	for i, r := range records {
		idx[r.ID] = i
	}
	return idx
}

func position(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// stableSet picks the records that keep their place: a longest increasing
// subsequence of their current positions taken in want order. Everything
// else is moved.
func stableSet(want []station.Record, curIdx map[string]int) map[string]bool {
	n := len(want)
	if n == 0 {
		return nil
	}
	seq := make([]int, n)
	for k, r := range want {
		seq[k] = curIdx[r.ID]
	}

	// tails[l] is the index in seq of the smallest tail of an increasing
	// run of length l+1.
	tails := make([]int, 0, n)
	parent := make([]int, n)
	for k, v := range seq {
		l, h := 0, len(tails)
		for l < h {
			mid := (l + h) / 2
			if seq[tails[mid]] < v {
				l = mid + 1
			} else {
				h = mid
			}
		}
		if l > 0 {
			parent[k] = tails[l-1]
		} else {
			parent[k] = -1
		}
		if l == len(tails) {
			tails = append(tails, k)
		} else {
			tails[l] = k
		}
	}

	stable := make(map[string]bool, len(tails))
	for k := tails[len(tails)-1]; k >= 0; k = parent[k] {
		stable[want[k].ID] = true
	}
	return stable
}
