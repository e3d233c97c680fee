package source

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/physics"
	"github.com/goionize/mcrt/pkg/spectrum"
)

// Frequency of the fixed 19.8 eV HeI line photon (in Hz).
const heliumLineFrequency = 4.788e15

// Minimum photon counts per iteration. Raising the counts to these floors
// guarantees adequate sampling of every source, at the cost of shooting more
// photons than requested.
const (
	minPhotonsPerDiscreteSource = 10
	minPhotonsContinuous        = 100
)

// ErrNoSources is returned when neither a discrete distribution nor a
// continuous source is configured. Radiative transfer without sources is
// meaningless, so this is fatal.
var ErrNoSources = errors.New("source: no discrete distribution and no continuous source")

// ErrInvalidReemissionTable is returned when a cell's helium re-emission
// probability table is not a valid cumulative distribution. It indicates a
// physics-table bug upstream and halts the run.
var ErrInvalidReemissionTable = errors.New("source: helium re-emission probabilities do not monotonically reach 1")

// PhotonSource holds the discrete and continuous sources used during the
// radiative transfer loop and performs photon generation and re-emission
// sampling. It is read-only during parallel photon shooting; SetPhotonCount
// must not be called while jobs are running.
type PhotonSource struct {
	positions     []core.Vec3
	weights       []float64
	probabilities []float64 // cumulative weights, last entry exactly 1

	continuous ContinuousSource

	discreteLuminosity   float64
	continuousLuminosity float64
	totalLuminosity      float64

	discreteFraction float64

	discreteCount   int
	continuousCount int

	discretePhotonWeight   float64
	continuousPhotonWeight float64

	discreteSpectrum   spectrum.Spectrum
	continuousSpectrum spectrum.Spectrum
	hLycSpectrum       spectrum.Spectrum
	heLycSpectrum      spectrum.Spectrum
	he2pcSpectrum      spectrum.Spectrum

	abundances    physics.Abundances
	crossSections physics.CrossSections

	logger *slog.Logger
}

// Config bundles the collaborators of a PhotonSource. Distribution and
// Continuous are optional, but at least one must be set.
type Config struct {
	Distribution       Distribution
	DiscreteSpectrum   spectrum.Spectrum
	Continuous         ContinuousSource
	ContinuousSpectrum spectrum.Spectrum
	// DiscreteFraction is the share of the photon budget given to the
	// discrete sources when both source kinds are present. Defaults to 0.5.
	DiscreteFraction float64
	Abundances       physics.Abundances
	CrossSections    physics.CrossSections
	Logger           *slog.Logger
}

// New constructs a PhotonSource from the given configuration. Configuration
// errors (no sources, weights not summing to 1, zero total luminosity) are
// fatal and reported immediately.
func New(cfg Config) (*PhotonSource, error) {
	if cfg.Distribution == nil && cfg.Continuous == nil {
		return nil, ErrNoSources
	}
	if cfg.Distribution != nil && cfg.DiscreteSpectrum == nil {
		return nil, errors.New("source: no spectrum provided for the discrete sources")
	}
	if cfg.Continuous != nil && cfg.ContinuousSpectrum == nil {
		return nil, errors.New("source: no spectrum provided for the continuous source")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fraction := cfg.DiscreteFraction
	if fraction <= 0 || fraction >= 1 {
		fraction = 0.5
	}

	s := &PhotonSource{
		continuous:             cfg.Continuous,
		discreteFraction:       fraction,
		discreteSpectrum:       cfg.DiscreteSpectrum,
		continuousSpectrum:     cfg.ContinuousSpectrum,
		hLycSpectrum:           spectrum.NewHydrogenLymanContinuum(cfg.CrossSections),
		heLycSpectrum:          spectrum.NewHeliumLymanContinuum(cfg.CrossSections),
		he2pcSpectrum:          spectrum.NewHeliumTwoPhotonContinuum(),
		abundances:             cfg.Abundances,
		crossSections:          cfg.CrossSections,
		discretePhotonWeight:   1,
		continuousPhotonWeight: 1,
		logger:                 logger,
	}

	if cfg.Distribution != nil {
		n := cfg.Distribution.NumSources()
		s.positions = make([]core.Vec3, n)
		s.weights = make([]float64, n)
		s.probabilities = make([]float64, n)
		for i := 0; i < n; i++ {
			s.positions[i] = cfg.Distribution.Position(i)
			s.weights[i] = cfg.Distribution.Weight(i)
			if i > 0 {
				s.probabilities[i] = s.probabilities[i-1] + s.weights[i]
			} else {
				s.probabilities[i] = s.weights[i]
			}
		}
		if math.Abs(s.probabilities[n-1]-1) > 1.e-9 {
			return nil, fmt.Errorf("source: discrete source weights do not sum to 1 (%g)", s.probabilities[n-1])
		}
		s.probabilities[n-1] = 1
		s.discreteLuminosity = cfg.Distribution.TotalLuminosity()

		logger.Info("constructed photon source", "discreteSources", n)
	}

	if cfg.Continuous != nil {
		s.continuousLuminosity = cfg.Continuous.TotalLuminosity()
	}

	s.totalLuminosity = s.discreteLuminosity + s.continuousLuminosity
	if s.totalLuminosity <= 0 {
		return nil, errors.New("source: total ionizing luminosity is zero")
	}

	logger.Info("source luminosities",
		"discrete", s.discreteLuminosity,
		"continuous", s.continuousLuminosity,
		"discreteShare", s.discreteLuminosity/s.totalLuminosity)

	return s, nil
}

// TotalLuminosity returns the total luminosity of all sources together
// (in s^-1).
func (s *PhotonSource) TotalLuminosity() float64 {
	return s.totalLuminosity
}

// SetPhotonCount sets the number of photons emitted during the next
// iteration and recomputes per-photon statistical weights. The actual count
// may exceed the request because of per-source minimum floors; callers must
// use the returned value.
func (s *PhotonSource) SetPhotonCount(number int) int {
	if s.discreteLuminosity > 0 && s.continuousLuminosity > 0 {
		s.discreteCount = int(s.discreteFraction * float64(number))
		// The remainder goes to the continuous source, so the two counts
		// sum to the request exactly even for odd numbers.
		s.continuousCount = number - s.discreteCount
	} else if s.discreteLuminosity > 0 {
		s.discreteCount = number
		s.continuousCount = 0
	} else {
		s.discreteCount = 0
		s.continuousCount = number
	}

	if s.discreteCount > 0 {
		if floor := minPhotonsPerDiscreteSource * len(s.weights); s.discreteCount < floor {
			s.discreteCount = floor
		}
		s.discretePhotonWeight = s.discreteLuminosity / float64(s.discreteCount)
	}

	if s.continuousCount > 0 {
		if s.continuousCount < minPhotonsContinuous {
			s.continuousCount = minPhotonsContinuous
		}
		s.continuousPhotonWeight = s.continuousLuminosity / float64(s.continuousCount)
	}

	s.logger.Debug("photon counts reset",
		"discrete", s.discreteCount, "continuous", s.continuousCount)

	return s.discreteCount + s.continuousCount
}

// setCrossSections computes all per-ion cross sections of the photon at the
// given frequency, plus the abundance-corrected helium cross section.
func (s *PhotonSource) setCrossSections(photon *Photon, frequency float64) {
	for ion := physics.Ion(0); ion < physics.NumIons; ion++ {
		photon.CrossSections[ion] = s.crossSections.ForIon(ion, frequency)
	}
	photon.CrossSectionHeCorr = s.abundances.Helium * photon.CrossSections[physics.IonHen]
}

// RandomPhoton generates a photon with a random origin, direction and
// energy. When both source kinds have photons budgeted, the kind is chosen
// by a fixed 0.5 coin flip; the per-kind counts already encode the
// luminosity split, so a luminosity-weighted choice would double count.
func (s *PhotonSource) RandomPhoton(rng *core.RandomStream) Photon {
	var discrete bool
	if s.discreteCount > 0 {
		if s.continuousCount > 0 {
			discrete = rng.Float64() < 0.5
		} else {
			discrete = true
		}
	}

	var photon Photon
	photon.Type = Primary

	if discrete {
		x := rng.Float64()
		i := 0
		for x > s.probabilities[i] {
			i++
		}
		photon.Position = s.positions[i]
		photon.Direction = core.RandomDirection(rng)
		photon.Energy = s.discreteSpectrum.RandomFrequency(rng, 0)
		photon.Weight = s.discretePhotonWeight
	} else {
		photon.Position, photon.Direction = s.continuous.RandomIncomingPhoton(rng)
		photon.Energy = s.continuousSpectrum.RandomFrequency(rng, 0)
		photon.Weight = s.continuousPhotonWeight
	}

	s.setCrossSections(&photon, photon.Energy)
	return photon
}

// Reemit processes a photon that was absorbed inside the given cell. It
// randomly decides whether the photon was absorbed by hydrogen or helium,
// walks the re-emission channels of that species, and either re-emits the
// photon at a new random frequency and direction (returning true) or tags
// it Absorbed (returning false). Every probability comparison uses a fresh
// uniform draw.
func (s *PhotonSource) Reemit(photon *Photon, cell physics.CellState, rng *core.RandomStream) (bool, error) {
	if cell.PHeEm[0] > cell.PHeEm[1] || cell.PHeEm[1] > cell.PHeEm[2] ||
		cell.PHeEm[2] > cell.PHeEm[3] || cell.PHeEm[3] != 1 {
		return false, fmt.Errorf("%w: [%g %g %g %g]", ErrInvalidReemissionTable,
			cell.PHeEm[0], cell.PHeEm[1], cell.PHeEm[2], cell.PHeEm[3])
	}

	pHabs := 1 / (1 +
		cell.NeutralFractionHe*s.abundances.Helium*photon.CrossSections[physics.IonHen]/
			(cell.NeutralFractionH*photon.CrossSections[physics.IonHn]))

	var newFrequency float64

	x := rng.Float64()
	if x <= pHabs {
		// photon absorbed by hydrogen
		x = rng.Float64()
		if x <= cell.PHion {
			newFrequency = s.hLycSpectrum.RandomFrequency(rng, cell.Temperature)
			photon.Type = DiffuseH
		} else {
			photon.Type = Absorbed
			return false, nil
		}
	} else {
		// photon absorbed by helium
		x = rng.Float64()
		switch {
		case x <= cell.PHeEm[0]:
			newFrequency = s.heLycSpectrum.RandomFrequency(rng, cell.Temperature)
			photon.Type = DiffuseHe
		case x <= cell.PHeEm[1]:
			newFrequency = heliumLineFrequency
			photon.Type = DiffuseHe
		case x <= cell.PHeEm[2]:
			x = rng.Float64()
			if x < 0.56 {
				// hydrogen-ionizing part of the two-photon continuum
				newFrequency = s.he2pcSpectrum.RandomFrequency(rng, cell.Temperature)
				photon.Type = DiffuseHe
			} else {
				photon.Type = Absorbed
				return false, nil
			}
		default:
			// HeI Ly-alpha: either absorbed on the spot by hydrogen or
			// converted to the two-photon continuum
			pHots := 1 / (1 +
				77*cell.NeutralFractionHe/
					(math.Sqrt(cell.Temperature)*cell.NeutralFractionH))
			x = rng.Float64()
			if x < pHots {
				x = rng.Float64()
				if x <= cell.PHion {
					newFrequency = s.hLycSpectrum.RandomFrequency(rng, cell.Temperature)
					photon.Type = DiffuseH
				} else {
					photon.Type = Absorbed
					return false, nil
				}
			} else {
				x = rng.Float64()
				if x < 0.56 {
					newFrequency = s.he2pcSpectrum.RandomFrequency(rng, cell.Temperature)
					photon.Type = DiffuseHe
				} else {
					photon.Type = Absorbed
					return false, nil
				}
			}
		}
	}

	photon.Energy = newFrequency
	photon.Direction = core.RandomDirection(rng)
	s.setCrossSections(photon, newFrequency)

	return true, nil
}
