package pricing

// VATTable resolves VAT rates per component category, falling back to the
// configured default rate when a category has no entry of its own.
type VATTable struct {
	DefaultRate float64
	Categories  map[string]float64
}

// RateFor returns the VAT rate in percent for a category.
func (t VATTable) RateFor(category string) float64 {
	if rate, ok := t.Categories[category]; ok {
		return rate
	}
	return t.DefaultRate
}

// GrossFromNet converts a net amount to gross at the given percent rate.
func GrossFromNet(net, rate float64) float64 {
	return net * (1 + rate/100)
}

// NetFromGross converts a gross amount back to net at the given percent rate.
func NetFromGross(gross, rate float64) float64 {
	return gross / (1 + rate/100)
}
