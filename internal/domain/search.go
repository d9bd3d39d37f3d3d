package domain

import "strings"

// MatchesQuery reports whether the deceased's name or village contains q,
// ignoring case. An empty query matches every record.
func MatchesQuery(r FuneralRecord, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.FullName), q) ||
		strings.Contains(strings.ToLower(r.Village), q)
}

// FilterFunerals keeps the records matching q, preserving order.
func FilterFunerals(records []FuneralRecord, q string) []FuneralRecord {
	if strings.TrimSpace(q) == "" {
		return records
	}
	out := make([]FuneralRecord, 0, len(records))
	for _, r := range records {
		if MatchesQuery(r, q) {
			out = append(out, r)
		}
	}
	return out
}

// CountGenders tallies records per gender, normalized by NormalizeGenderCounts.
func CountGenders(records []FuneralRecord) []GenderCount {
	var raw []GenderCount
	idx := make(map[Gender]int)
	for _, r := range records {
		i, ok := idx[r.Gender]
		if !ok {
			i = len(raw)
			idx[r.Gender] = i
			raw = append(raw, GenderCount{Gender: r.Gender})
		}
		raw[i].Count++
	}
	return NormalizeGenderCounts(raw)
}

// NormalizeGenderCounts orders counts as Genders (with zero buckets for
// genders that have no records), followed by any non-standard values in
// their original order.
func NormalizeGenderCounts(counts []GenderCount) []GenderCount {
	out := make([]GenderCount, 0, len(Genders)+len(counts))
	idx := make(map[Gender]int, len(Genders))
	for _, g := range Genders {
		idx[g] = len(out)
		out = append(out, GenderCount{Gender: g})
	}
	for _, c := range counts {
		if i, ok := idx[c.Gender]; ok {
			out[i].Count += c.Count
			continue
		}
		idx[c.Gender] = len(out)
		out = append(out, c)
	}
	return out
}
