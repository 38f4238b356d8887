package matcher

// Weights are the additive score components. They are tunable; DefaultWeights
// holds the calibrated values.
type Weights struct {
	Base               float64 `yaml:"base"`
	SameGender         float64 `yaml:"same_gender"`
	NeutralGender      float64 `yaml:"neutral_gender"`
	UnknownUserNeutral float64 `yaml:"unknown_user_neutral"`
	UnknownUserMarked  float64 `yaml:"unknown_user_marked"`
	AgeFit             float64 `yaml:"age_fit"`
	AgeMiss            float64 `yaml:"age_miss"`
	AgeUnknown         float64 `yaml:"age_unknown"`
	SkinMatch          float64 `yaml:"skin_match"`
	SkinMiss           float64 `yaml:"skin_miss"`
	ConcernHit         float64 `yaml:"concern_hit"`
	ConcernNone        float64 `yaml:"concern_none"`
	NameEcho           float64 `yaml:"name_echo"`
	Jitter             float64 `yaml:"jitter"`
}

// DefaultWeights returns the production scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Base:               0.1,
		SameGender:         3,
		NeutralGender:      1.5,
		UnknownUserNeutral: 2,
		UnknownUserMarked:  1,
		AgeFit:             1,
		AgeMiss:            0.3,
		AgeUnknown:         0.5,
		SkinMatch:          1,
		SkinMiss:           0.2,
		ConcernHit:         0.8,
		ConcernNone:        0.2,
		NameEcho:           0.3,
		Jitter:             0.1,
	}
}

// WithDefaults fills zero fields from DefaultWeights.
func (w Weights) WithDefaults() Weights {
	d := DefaultWeights()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&w.Base, d.Base)
	fill(&w.SameGender, d.SameGender)
	fill(&w.NeutralGender, d.NeutralGender)
	fill(&w.UnknownUserNeutral, d.UnknownUserNeutral)
	fill(&w.UnknownUserMarked, d.UnknownUserMarked)
	fill(&w.AgeFit, d.AgeFit)
	fill(&w.AgeMiss, d.AgeMiss)
	fill(&w.AgeUnknown, d.AgeUnknown)
	fill(&w.SkinMatch, d.SkinMatch)
	fill(&w.SkinMiss, d.SkinMiss)
	fill(&w.ConcernHit, d.ConcernHit)
	fill(&w.ConcernNone, d.ConcernNone)
	fill(&w.NameEcho, d.NameEcho)
	fill(&w.Jitter, d.Jitter)
	return w
}
