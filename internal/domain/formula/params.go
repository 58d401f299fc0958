package formula

import "math"

// Params groups the tunable constants of every formula. It is embedded in the
// process configuration under the "formulas" key.
type Params struct {
	ATKLABv1    ATKLABv1Params    `koanf:"atklabv1"`
	ATKLABv2    ATKLABv2Params    `koanf:"atklabv2"`
	ECSC2024    ECSC2024Params    `koanf:"ecsc2024"`
	ECSC2025    ECSC2025Params    `koanf:"ecsc2025"`
	SaarCTF2024 SaarCTF2024Params `koanf:"saarctf2024"`
}

// ATKLABv1Params configures ATKLABv1.
type ATKLABv1Params struct {
	// Defense is the DEF value of an attacker that compromised every other team.
	Defense float64 `koanf:"defense"`
}

// ATKLABv2Params configures ATKLABv2.
type ATKLABv2Params struct {
	// Curve selects the decay curve: dhm, cscg, hxp or ecsc2025.
	Curve string `koanf:"curve"`
	// Alpha and Beta are curve specific; zero selects the curve default.
	Alpha float64 `koanf:"alpha"`
	Beta  float64 `koanf:"beta"`
	// Base is the value of a flag captured by a single team.
	Base float64 `koanf:"base"`
	// Min is the floor every capture is worth.
	Min float64 `koanf:"min"`
	// Attackers is "successful" or "scaled".
	Attackers string `koanf:"attackers"`
}

// ECSC2024Params configures ECSC2024.
type ECSC2024Params struct {
	Scale float64 `koanf:"scale"`
	Norm  float64 `koanf:"norm"`
	SLA   float64 `koanf:"sla"`
}

// ECSC2025Params configures ECSC2025. All values must be whole numbers.
type ECSC2025Params struct {
	Base    float64 `koanf:"base"`
	Min     float64 `koanf:"min"`
	Defense float64 `koanf:"defense"`
	SLA     float64 `koanf:"sla"`
}

// SaarCTF2024Params configures SaarCTF2024.
type SaarCTF2024Params struct {
	Offense float64 `koanf:"offense"`
	Defense float64 `koanf:"defense"`
	SLA     float64 `koanf:"sla"`
}

// DefaultParams returns the parameters each formula ships with.
func DefaultParams() Params {
	return Params{
		ATKLABv1: ATKLABv1Params{Defense: 0.5},
		ATKLABv2: ATKLABv2Params{
			Curve:     CurveCSCG,
			Base:      10,
			Min:       1,
			Attackers: AttackersScaled,
		},
		ECSC2024: ECSC2024Params{
			Scale: 15 * math.Sqrt(5),
			Norm:  math.Log(math.Log(5)) / 12,
			SLA:   5,
		},
		ECSC2025: ECSC2025Params{Base: 10, Min: 1, Defense: 1, SLA: 1},
		SaarCTF2024: SaarCTF2024Params{
			Offense: 1,
			Defense: 1,
			SLA:     1,
		},
	}
}
