// Package unit converts quantities between measurement units via per-family
// canonical base units (grams, milliliters, pieces). It is pure: no state,
// no I/O, float64 arithmetic throughout. Callers round for display only.
package unit

import "strings"

type Family string

const (
	FamilyWeight Family = "weight"
	FamilyVolume Family = "volume"
	FamilyCount  Family = "count"
)

const (
	BaseWeight = "g"
	BaseVolume = "ml"
	BaseCount  = "pcs"
)

type unitDef struct {
	family Family
	factor float64 // multiplier converting one unit to the family base
}

// Factors match the platform's fixed conversion tables; changing them breaks
// compatibility with recorded recipe and offer quantities.
var units = map[string]unitDef{
	// weight -> grams
	"g":     {FamilyWeight, 1},
	"gram":  {FamilyWeight, 1},
	"grams": {FamilyWeight, 1},
	"kg":    {FamilyWeight, 1000},
	"lb":    {FamilyWeight, 453.592},
	"lbs":   {FamilyWeight, 453.592},
	"oz":    {FamilyWeight, 28.3495},

	// volume -> milliliters
	"ml":    {FamilyVolume, 1},
	"l":     {FamilyVolume, 1000},
	"liter": {FamilyVolume, 1000},
	"litre": {FamilyVolume, 1000},
	"cup":   {FamilyVolume, 236.588},
	"cups":  {FamilyVolume, 236.588},
	"tbsp":  {FamilyVolume, 14.7868},
	"tsp":   {FamilyVolume, 4.92892},

	// count -> pieces
	"pc":     {FamilyCount, 1},
	"pcs":    {FamilyCount, 1},
	"piece":  {FamilyCount, 1},
	"pieces": {FamilyCount, 1},
	"unit":   {FamilyCount, 1},
	"units":  {FamilyCount, 1},
	"each":   {FamilyCount, 1},
}

var baseUnits = map[Family]string{
	FamilyWeight: BaseWeight,
	FamilyVolume: BaseVolume,
	FamilyCount:  BaseCount,
}

func normalize(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

func lookup(u string) (unitDef, bool) {
	def, ok := units[normalize(u)]
	return def, ok
}

// FamilyOf returns the unit family of u.
func FamilyOf(u string) (Family, error) {
	def, ok := lookup(u)
	if !ok {
		return "", unknown(u)
	}
	return def.family, nil
}

// BaseUnitOf returns the canonical base unit of u's family.
func BaseUnitOf(u string) (string, error) {
	def, ok := lookup(u)
	if !ok {
		return "", unknown(u)
	}
	return baseUnits[def.family], nil
}

// IsBaseUnit reports whether u is one of the three canonical base units.
func IsBaseUnit(u string) bool {
	switch normalize(u) {
	case BaseWeight, BaseVolume, BaseCount:
		return true
	}
	return false
}

// Compatible reports whether q can be converted between u1 and u2, i.e. both
// are known and belong to the same family.
func Compatible(u1, u2 string) bool {
	d1, ok1 := lookup(u1)
	d2, ok2 := lookup(u2)
	return ok1 && ok2 && d1.family == d2.family
}
