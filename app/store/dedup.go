package store

// dedupByID keeps the first record for every identifier, preserving order,
// and reports how many records were dropped.
func dedupByID[T any](records []T, id func(T) string) ([]T, int) {
	seen := make(map[string]struct{}, len(records))
	unique := make([]T, 0, len(records))
	for _, r := range records {
		key := id(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}
	return unique, len(records) - len(unique)
}

// upsertByID replaces the record with the same identifier as r, or appends r.
// It reports whether an existing record was replaced.
func upsertByID[T any](records []T, r T, id func(T) string) ([]T, bool) {
	key := id(r)
	for i := range records {
		if id(records[i]) == key {
			records[i] = r
			return records, true
		}
	}
	return append(records, r), false
}
