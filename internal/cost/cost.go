// Package cost derives the total chaos investment of a farming session from
// its map, chisel, scarab and craft configuration. The summation order (map
// cost, chisels, each scarab in list order, map craft) is fixed so recomputed
// totals stay bit-identical to totals persisted by older records.
package cost

// chiselUsesPerMap is the number of chisels consumed per map. Fixed by the
// game's map quality mechanics, not configurable.
const chiselUsesPerMap = 4

type ScarabInput struct {
	Price    float64
	Quantity float64
}

// Input carries the cost-bearing fields of a session. Zero values mean
// "not set" and contribute nothing, the same way the entry form treats
// empty numeric fields.
type Input struct {
	IsSelfFarmed    bool
	MapCost         float64
	NumberOfMaps    float64
	IsUsingChisels  bool
	ChiselPrice     float64
	IsUsingScarabs  bool
	Scarabs         []ScarabInput
	IsUsingMapCraft bool
	MapCraftPrice   float64
}

// Total computes the session's total cost. Pure and deterministic.
func Total(in Input) float64 {
	total := 0.0
	numberOfMaps := in.NumberOfMaps

	// Map cost
	if !in.IsSelfFarmed && in.MapCost != 0 {
		total += in.MapCost * numberOfMaps
	}

	// Chisel cost
	if in.IsUsingChisels && in.ChiselPrice != 0 {
		total += in.ChiselPrice * chiselUsesPerMap * numberOfMaps
	}

	// Scarabs
	if in.IsUsingScarabs {
		for _, scarab := range in.Scarabs {
			if scarab.Price == 0 || scarab.Quantity == 0 {
				continue
			}
			total += scarab.Price * scarab.Quantity * numberOfMaps
		}
	}

	// Map craft
	if in.IsUsingMapCraft && in.MapCraftPrice != 0 {
		total += in.MapCraftPrice * numberOfMaps
	}

	return total
}
