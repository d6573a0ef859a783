package analysis

// Transaction groups the records produced by a single measurement action.
// A normal measurement appends one record; an equal-N measurement appends a
// Control and a Treatment record atomically.
type Transaction struct {
	ID      int
	Records []Record
}

// History is the append-only, order-preserving log of measurement records.
// The only mutations are Append, Undo (drop the most recent transaction)
// and Clear.
type History struct {
	records []Record
	txIDs   []int
	nextTx  int
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{nextTx: 1}
}

// Len returns the number of records.
func (h *History) Len() int {
	return len(h.records)
}

// Records returns a copy of the record log in append order.
func (h *History) Records() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Append commits a measurement to the history and returns the transaction
// it produced. The start-lane offset is applied first; in equal-N mode the
// padded sequence is then split at its midpoint into a Control record (first
// half, detail "None") and a Treatment record (second half, caller's
// detail), both sharing the spec's kind and name.
func (h *History) Append(spec Spec) Transaction {
	intensities := make([]float64, 0, len(spec.Intensities))
	if offset := spec.StartLane - 1; offset > 0 {
		intensities = append(intensities, make([]float64, offset)...)
	}
	intensities = append(intensities, spec.Intensities...)

	tx := Transaction{ID: h.nextTx}
	h.nextTx++

	if spec.EqualN {
		mid := len(intensities) / 2
		tx.Records = append(tx.Records,
			h.push(tx.ID, Record{
				Kind:        spec.Kind,
				Group:       GroupControl,
				Detail:      DetailNone,
				Name:        spec.Name,
				Intensities: intensities[:mid:mid],
			}),
			h.push(tx.ID, Record{
				Kind:        spec.Kind,
				Group:       GroupTreatment,
				Detail:      spec.Detail,
				Name:        spec.Name,
				Intensities: intensities[mid:],
			}),
		)
		return tx
	}

	tx.Records = append(tx.Records, h.push(tx.ID, Record{
		Kind:        spec.Kind,
		Group:       spec.Group,
		Detail:      spec.Detail,
		Name:        spec.Name,
		Intensities: intensities,
	}))
	return tx
}

func (h *History) push(txID int, r Record) Record {
	r.Seq = len(h.records)
	h.records = append(h.records, r)
	h.txIDs = append(h.txIDs, txID)
	return r
}

// Undo removes the most recently appended transaction and returns it. An
// equal-N pair is removed as a whole, so a measurement is always reversed by
// exactly one Undo.
func (h *History) Undo() (Transaction, bool) {
	if len(h.records) == 0 {
		return Transaction{}, false
	}

	id := h.txIDs[len(h.txIDs)-1]
	tx := Transaction{ID: id}
	cut := len(h.records)
	for cut > 0 && h.txIDs[cut-1] == id {
		cut--
	}
	tx.Records = append(tx.Records, h.records[cut:]...)
	h.records = h.records[:cut]
	h.txIDs = h.txIDs[:cut]
	return tx, true
}

// Clear removes every record.
func (h *History) Clear() {
	h.records = nil
	h.txIDs = nil
	h.nextTx = 1
}

// TargetNames returns the distinct target names in order of first
// appearance.
func (h *History) TargetNames() []string {
	return targetNames(h.records)
}

// LatestTargetName returns the most recently introduced target name, or ""
// when no target has been measured.
func (h *History) LatestTargetName() (string, bool) {
	names := targetNames(h.records)
	if len(names) == 0 {
		return "", false
	}
	return names[len(names)-1], true
}

func targetNames(records []Record) []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range records {
		if r.Kind != Target || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		names = append(names, r.Name)
	}
	return names
}

// MatchControl finds the loading control a target record normalizes
// against: the nearest record before the target's sequence index with the
// same group and kind LoadingControl. When no control precedes the target,
// the most recently appended control for that group anywhere in the history
// is used, which may be a record appended after the target. The fallback is
// kept for parity with historical analyses.
func MatchControl(records []Record, target Record) (Record, bool) {
	limit := target.Seq
	if limit > len(records) {
		limit = len(records)
	}
	for i := limit - 1; i >= 0; i-- {
		if records[i].Kind == LoadingControl && records[i].Group == target.Group {
			return records[i], true
		}
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Kind == LoadingControl && records[i].Group == target.Group {
			return records[i], true
		}
	}
	return Record{}, false
}

// Ratios computes the per-lane normalized values of a target record against
// its matched loading control. The result has min(len(control), len(target))
// entries; a lane is defined only when both intensities are strictly
// positive.
func Ratios(records []Record, target Record) []Ratio {
	control, ok := MatchControl(records, target)
	if !ok {
		return nil
	}

	n := len(target.Intensities)
	if len(control.Intensities) < n {
		n = len(control.Intensities)
	}

	ratios := make([]Ratio, n)
	for i := 0; i < n; i++ {
		c, t := control.Intensities[i], target.Intensities[i]
		if c > 0 && t > 0 {
			ratios[i] = Ratio{Value: t / c, Defined: true}
		}
	}
	return ratios
}
