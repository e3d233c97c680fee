// Package source turns a physical source distribution into a stream of
// photon packets, and re-samples packets after absorption events.
package source

import (
	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/physics"
)

// PhotonType tags the origin of a photon packet.
type PhotonType int

const (
	// Primary photons come directly from a source.
	Primary PhotonType = iota
	// DiffuseH photons were re-emitted by hydrogen recombination.
	DiffuseH
	// DiffuseHe photons were re-emitted by helium recombination.
	DiffuseHe
	// Absorbed marks a packet that was absorbed and not re-emitted as an
	// ionizing photon. This is a terminal state, not an error.
	Absorbed
	// NumPhotonTypes is the number of photon type tags.
	NumPhotonTypes
)

// String returns the name of the photon type.
func (t PhotonType) String() string {
	switch t {
	case Primary:
		return "primary"
	case DiffuseH:
		return "diffuse-H"
	case DiffuseHe:
		return "diffuse-He"
	case Absorbed:
		return "absorbed"
	default:
		return "unknown"
	}
}

// Photon is a discrete packet of ionizing radiation. Position, direction and
// energy change on every re-emission; the statistical weight is fixed at
// creation so that summed weights reproduce the source luminosity.
type Photon struct {
	Position  core.Vec3
	Direction core.Vec3
	Energy    float64 // frequency (Hz)
	Weight    float64
	Type      PhotonType

	// CrossSections holds the photoionization cross section per tracked
	// ion at the photon's current energy.
	CrossSections [physics.NumIons]float64
	// CrossSectionHeCorr is the helium cross section corrected for the
	// helium abundance: A(He) * sigma(He0).
	CrossSectionHeCorr float64
}
