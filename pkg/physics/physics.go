// Package physics provides the atomic physics collaborators consumed by the
// transport core: photoionization cross sections and elemental abundances.
// Both are pure functions of their inputs and safe for concurrent use.
package physics

import "math"

// Ion identifies an ionic species tracked during transport.
type Ion int

const (
	// IonHn is neutral hydrogen.
	IonHn Ion = iota
	// IonHen is neutral helium.
	IonHen
	// NumIons is the number of tracked ionic species.
	NumIons
)

// Frequency thresholds for photoionization (in Hz).
const (
	// FrequencyH is the hydrogen ionization threshold (13.6 eV).
	FrequencyH = 3.289e15
	// FrequencyHe is the helium ionization threshold (24.6 eV).
	FrequencyHe = 5.948e15
)

// CrossSections returns photoionization cross sections as a function of ion
// and photon frequency.
type CrossSections interface {
	// ForIon returns the cross section (in m^2) for the given ion at the
	// given photon frequency (in Hz). Returns 0 below the ionization
	// threshold of the ion.
	ForIon(ion Ion, frequency float64) float64
}

// HydrogenicCrossSections approximates the photoionization cross sections of
// hydrogen and helium with hydrogenic power laws: sigma0*(nu0/nu)^3 above the
// ionization threshold, zero below.
type HydrogenicCrossSections struct{}

// ForIon returns the cross section for the given ion at the given frequency.
func (HydrogenicCrossSections) ForIon(ion Ion, frequency float64) float64 {
	switch ion {
	case IonHn:
		if frequency < FrequencyH {
			return 0
		}
		ratio := FrequencyH / frequency
		return 6.3e-22 * ratio * ratio * ratio
	case IonHen:
		if frequency < FrequencyHe {
			return 0
		}
		ratio := FrequencyHe / frequency
		return 7.83e-22 * ratio * ratio * ratio
	default:
		return 0
	}
}

// Abundances holds the abundances of the elements in the ISM, relative to
// hydrogen by number.
type Abundances struct {
	Helium float64
}

// DefaultAbundances returns the standard ISM helium abundance.
func DefaultAbundances() Abundances {
	return Abundances{Helium: 0.1}
}

// PlanckEnergy converts a frequency (in Hz) to a photon energy (in J).
func PlanckEnergy(frequency float64) float64 {
	const h = 6.626e-34
	return h * frequency
}

// Clamp limits a value to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
