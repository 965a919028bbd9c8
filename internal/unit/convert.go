package unit

import "github.com/kusinaops/inventory-service/internal/model"

// Conversion carries a base-unit quantity along with its provenance.
type Conversion struct {
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	OriginalQuantity float64 `json:"original_quantity"`
	OriginalUnit     string  `json:"original_unit"`
}

func unknown(u string) error {
	return &model.UnknownUnitError{Unit: u}
}

// Convert converts quantity from one unit to another within the same family.
// Equal units (case-insensitive) return the input unchanged so no
// floating-point round trip is introduced.
func Convert(quantity float64, from, to string) (float64, error) {
	nf, nt := normalize(from), normalize(to)
	if nf == nt {
		if _, ok := units[nf]; !ok {
			return 0, unknown(from)
		}
		return quantity, nil
	}

	df, ok := units[nf]
	if !ok {
		return 0, unknown(from)
	}
	dt, ok := units[nt]
	if !ok {
		return 0, unknown(to)
	}
	if df.family != dt.family {
		return 0, &model.IncompatibleUnitsError{From: from, To: to}
	}

	return quantity * df.factor / dt.factor, nil
}

// ToBaseUnit converts quantity into its family's base unit.
func ToBaseUnit(quantity float64, from string) (*Conversion, error) {
	def, ok := lookup(from)
	if !ok {
		return nil, unknown(from)
	}

	base := baseUnits[def.family]
	converted, err := Convert(quantity, from, base)
	if err != nil {
		return nil, err
	}

	return &Conversion{
		Quantity:         converted,
		Unit:             base,
		OriginalQuantity: quantity,
		OriginalUnit:     from,
	}, nil
}
