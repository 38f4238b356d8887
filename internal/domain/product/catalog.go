package product

// Catalog is the loaded product assortment.
type Catalog struct {
	General []Product
	Elder   []Product
}

// For returns the elder assortment for elder profiles when it is non-empty,
// the general assortment otherwise.
func (c Catalog) For(elder bool) []Product {
	if elder && len(c.Elder) > 0 {
		return c.Elder
	}
	return c.General
}

// Empty reports whether neither assortment has products.
func (c Catalog) Empty() bool { return len(c.General) == 0 && len(c.Elder) == 0 }
