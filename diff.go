package main

// DiffPolicy selects the membership test used to decide whether a record is new.
type DiffPolicy string

const (
	// DiffStructural compares the whole record, name included. A known host
	// whose resolved name changed between sweeps is reported again.
	DiffStructural DiffPolicy = "structural"
	// DiffIdentity compares only the (ip, mac) pair.
	DiffIdentity DiffPolicy = "identity"
)

// Diff returns the records of current that are absent from previous, in the
// order of current. The result is not deduplicated.
func Diff(previous, current []DeviceRecord, policy DiffPolicy) []DeviceRecord {
	var out []DeviceRecord

	if policy == DiffIdentity {
		seen := make(map[IdentityPair]struct{}, len(previous))
		for _, p := range previous {
			seen[p.Identity()] = struct{}{}
		}
		for _, c := range current {
			if _, ok := seen[c.Identity()]; !ok {
				out = append(out, c)
			}
		}
		return out
	}

	seen := make(map[DeviceRecord]struct{}, len(previous))
	for _, p := range previous {
		seen[p] = struct{}{}
	}
	for _, c := range current {
		if _, ok := seen[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
