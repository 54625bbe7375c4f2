package enums

// PriceSource labels which resolution tier produced a unit price.
type PriceSource string

const (
	PriceSourceCatalog PriceSource = "catalog"
	PriceSourceCaller  PriceSource = "caller"
	PriceSourceSearch  PriceSource = "search"
	PriceSourceNone    PriceSource = "none"
)

// String implements fmt.Stringer.
func (p PriceSource) String() string {
	return string(p)
}

// Resolved reports whether the tier yielded a usable price.
func (p PriceSource) Resolved() bool {
	return p != "" && p != PriceSourceNone
}
