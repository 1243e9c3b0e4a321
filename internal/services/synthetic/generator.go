package synthetic

import (
	"math"
	"math/rand/v2"
	"time"

	"PatientPulse/internal/domain/models"
	domsvc "PatientPulse/internal/domain/service"
	"PatientPulse/internal/services/features"
)

// DemoTail overwrites the newest points so every alert tier shows up.
var DemoTail = []int{42, 35, 25, 31, 27}

const minPatients = 5

// Generator builds a plausible hourly history when no real data exists.
type Generator struct {
	Hours int
	Base  float64
	Noise domsvc.NoiseSource
}

// NewGenerator returns the stock 240h generator with N(0, stddev) noise.
func NewGenerator(hours int, base, stddev float64, seed int64) *Generator {
	return &Generator{
		Hours: hours,
		Base:  base,
		Noise: NewGaussianNoise(stddev, seed),
	}
}

// Generate returns Hours+1 hourly observations ending at now truncated to
// the hour, in now's location.
func (g *Generator) Generate(now time.Time) []models.Observation {
	end := features.HourKey(now)
	n := g.Hours + 1
	noise := g.Noise
	if noise == nil {
		noise = ZeroNoise{}
	}

	out := make([]models.Observation, n)
	for i := 0; i < n; i++ {
		ts := end.Add(-time.Duration(n-1-i) * time.Hour)
		out[i] = models.Observation{Timestamp: ts, Patients: g.patientsAt(ts, noise.Next())}
	}
	if n >= len(DemoTail) {
		for i, v := range DemoTail {
			out[n-len(DemoTail)+i].Patients = v
		}
	}
	return out
}

func (g *Generator) patientsAt(ts time.Time, noise float64) int {
	h := float64(ts.Hour())
	dow := float64(features.DayOfWeek(ts))
	m := float64(ts.Month())
	v := g.Base +
		12*math.Sin(2*math.Pi*h/24) +
		8*math.Sin(2*math.Pi*dow/7) +
		5*math.Cos(2*math.Pi*m/12) +
		noise
	p := int(math.RoundToEven(v))
	if p < minPatients {
		return minPatients
	}
	return p
}

// GaussianNoise draws from N(0, StdDev). Not safe for concurrent use.
type GaussianNoise struct {
	StdDev float64
	Rand   *rand.Rand
}

// NewGaussianNoise seeds a PCG source; seed 0 picks a random seed.
func NewGaussianNoise(stddev float64, seed int64) *GaussianNoise {
	var src rand.Source
	if seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	} else {
		src = rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	}
	return &GaussianNoise{StdDev: stddev, Rand: rand.New(src)}
}

func (n *GaussianNoise) Next() float64 {
	return n.Rand.NormFloat64() * n.StdDev
}

// ZeroNoise makes the generator deterministic.
type ZeroNoise struct{}

func (ZeroNoise) Next() float64 { return 0 }
