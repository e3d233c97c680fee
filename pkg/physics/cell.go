package physics

import "math"

// CellState is the physical state of a single grid cell as seen by the
// transport and re-emission code.
type CellState struct {
	NumberDensity     float64 // hydrogen number density (m^-3)
	NeutralFractionH  float64 // neutral fraction of hydrogen
	NeutralFractionHe float64 // neutral fraction of helium
	Temperature       float64 // temperature (K)

	// PHion is the probability that a photon absorbed by hydrogen is
	// re-emitted as an ionizing Lyman continuum photon.
	PHion float64
	// PHeEm are the cumulative probabilities of the four helium
	// re-emission channels. Strictly non-decreasing; the last entry is 1.
	PHeEm [4]float64
}

// SetReemissionProbabilities recomputes the re-emission probabilities of the
// cell for the given temperature, from power-law fits to the recombination
// coefficients. The helium channel probabilities are normalized by their sum
// and the cumulative table ends at exactly 1.
func (c *CellState) SetReemissionProbabilities(temperature float64) {
	t4 := temperature * 1.e-4

	alpha1H := 1.58e-13 * math.Pow(t4, -0.53)
	alphaAagn := 4.18e-13 * math.Pow(t4, -0.7)
	c.PHion = alpha1H / alphaAagn

	alpha1He := 1.54e-13 * math.Pow(t4, -0.486)
	alphaE2tS := 2.1e-13 * math.Pow(t4, -0.381)
	alphaE2sS := 2.06e-14 * math.Pow(t4, -0.451)
	alphaE2sP := 4.17e-14 * math.Pow(t4, -0.695)
	alphaHe := alpha1He + alphaE2tS + alphaE2sS + alphaE2sP

	c.PHeEm[0] = alpha1He / alphaHe
	c.PHeEm[1] = c.PHeEm[0] + alphaE2tS/alphaHe
	c.PHeEm[2] = c.PHeEm[1] + alphaE2sS/alphaHe
	// the cumulative float additions can land one ulp off 1; snap the
	// last entry so the table is a valid cumulative distribution
	c.PHeEm[3] = 1
}
