package routers

// Addresses returns the addresses of records in order.
func Addresses(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Address)
	}
	return out
}

// Set is a set of router addresses.
type Set map[string]struct{}

// NewSet builds an address set from records.
func NewSet(records []Record) Set {
	s := make(Set, len(records))
	for _, r := range records {
		s.Add(r.Address)
	}
	return s
}

// Add inserts an address.
func (s Set) Add(address string) {
	s[address] = struct{}{}
}

// Has reports whether the address is present.
func (s Set) Has(address string) bool {
	_, ok := s[address]
	return ok
}

// Normalize trims every record and validates it, preserving order and nil-ness.
func Normalize(records []Record) ([]Record, error) {
	if records == nil {
		return nil, nil
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		r = r.Normalize()
		if err := r.Validate(); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
