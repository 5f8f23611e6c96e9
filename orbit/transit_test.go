package orbit

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/starspot-simulator/core"
	"github.com/signalsfoundry/starspot-simulator/model"
)

func edgeOnPlanet() model.Planet {
	return model.Planet{
		Period:        3,
		SemiMajorAxis: 10,
		Radius:        0.1,
		Inc:           math.Pi / 2,
		Omega:         math.Pi / 2, // mid-transit at T0
	}
}

func TestNewModel_RejectsInvalidPlanet(t *testing.T) {
	p := edgeOnPlanet()
	p.Period = 0
	_, err := NewModel(p, core.LimbDarkening{})
	var de *model.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("zero-period planet accepted: %v", err)
	}
}

func TestModel_MidTransitPosition(t *testing.T) {
	m, err := NewModel(edgeOnPlanet(), core.LimbDarkening{})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	pos, err := m.Positions([]float64{0})
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	p := pos[0]
	if !p.InFront() {
		t.Fatalf("planet not in front at T0: %+v", p)
	}
	if math.Abs(p.Y) > 1e-9 || math.Abs(p.Z) > 1e-9 {
		t.Fatalf("mid-transit sky position (%v, %v), want disk centre", p.Y, p.Z)
	}
	if math.Abs(p.X+10) > 1e-9 {
		t.Fatalf("mid-transit X = %v, want -a", p.X)
	}
}

func TestModel_OppositeConjunctionBehindStar(t *testing.T) {
	m, err := NewModel(edgeOnPlanet(), core.LimbDarkening{})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	pos, err := m.Positions([]float64{1.5}) // half a period after T0
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if pos[0].InFront() {
		t.Fatalf("planet in front at opposite conjunction: %+v", pos[0])
	}
}

func TestModel_ImpactParameterFromInclination(t *testing.T) {
	p := edgeOnPlanet()
	p.Inc = math.Acos(0.05) // b = a·cos(i) = 0.5
	m, err := NewModel(p, core.LimbDarkening{})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	pos, err := m.Positions([]float64{0})
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if got := math.Abs(pos[0].Z); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("impact parameter = %v, want 0.5", got)
	}
}

func TestModel_UniformDiskCentralDepth(t *testing.T) {
	// On a uniform disk a fully-in-transit planet blocks exactly
	// (rp/R*)² of the flux.
	m, err := NewModel(edgeOnPlanet(), core.LimbDarkening{})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	loss, err := m.FluxLoss([]float64{0})
	if err != nil {
		t.Fatalf("FluxLoss: %v", err)
	}
	want := 0.1 * 0.1
	if math.Abs(loss[0]-want) > 1e-6 {
		t.Fatalf("central flux loss = %v, want %v", loss[0], want)
	}
}

func TestModel_LimbDarkenedCentralDepthIsDeeper(t *testing.T) {
	// Limb darkening concentrates intensity at disk centre, so a central
	// crossing hides more than the geometric ratio.
	ld := core.LimbDarkening{U1: 0.5, U2: 0.2}
	m, err := NewModel(edgeOnPlanet(), ld)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	loss, err := m.FluxLoss([]float64{0})
	if err != nil {
		t.Fatalf("FluxLoss: %v", err)
	}
	if loss[0] <= 0.01 {
		t.Fatalf("limb-darkened central loss = %v, want > geometric 0.01", loss[0])
	}
	if loss[0] >= 0.02 {
		t.Fatalf("limb-darkened central loss = %v, implausibly deep", loss[0])
	}
}

func TestModel_OutOfTransitLossIsZero(t *testing.T) {
	m, err := NewModel(edgeOnPlanet(), core.LimbDarkening{U1: 0.3})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	loss, err := m.FluxLoss([]float64{0.75, 1.5, 2.25})
	if err != nil {
		t.Fatalf("FluxLoss: %v", err)
	}
	for i, l := range loss {
		if l != 0 {
			t.Fatalf("out-of-transit loss[%d] = %v, want 0", i, l)
		}
	}
}

func TestModel_IngressEgressSymmetry(t *testing.T) {
	m, err := NewModel(edgeOnPlanet(), core.LimbDarkening{U1: 0.4, U2: 0.1})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	dt := 0.004
	loss, err := m.FluxLoss([]float64{-dt, dt})
	if err != nil {
		t.Fatalf("FluxLoss: %v", err)
	}
	if loss[0] == 0 {
		t.Fatalf("samples fell outside the transit window")
	}
	if math.Abs(loss[0]-loss[1]) > 1e-8 {
		t.Fatalf("circular-orbit transit not symmetric: %v vs %v", loss[0], loss[1])
	}
}
