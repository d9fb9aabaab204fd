package etm

import "fmt"

// Metrics aggregates run-wide counters for final reporting and debugging.
type Metrics struct {
	TicksRun            int
	ReturnsAllowed      int
	ReturnsDenied       int
	Reformations        int
	DetectionEvents     int
	ConflictResolutions int
	Annihilations       int
	PhotonsCreated      int
	BetaDecays          int
	WeakInteractions    int

	EnergyReleasedTotal float64
	PhotonEnergyTotal   float64
}

// NewMetrics returns an empty counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Print displays the aggregated counters at the end of a simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Ticks run            : %d\n", m.TicksRun)
	fmt.Printf("Returns allowed      : %d\n", m.ReturnsAllowed)
	fmt.Printf("Returns denied       : %d\n", m.ReturnsDenied)
	fmt.Printf("Reformations         : %d\n", m.Reformations)
	fmt.Printf("Detection events     : %d\n", m.DetectionEvents)
	fmt.Printf("Conflict resolutions : %d\n", m.ConflictResolutions)
	fmt.Printf("Annihilations        : %d\n", m.Annihilations)
	fmt.Printf("Photons created      : %d\n", m.PhotonsCreated)
	fmt.Printf("Beta decays          : %d\n", m.BetaDecays)
	fmt.Printf("Weak interactions    : %d\n", m.WeakInteractions)
	fmt.Printf("Energy released      : %.4f eV\n", m.EnergyReleasedTotal)
	fmt.Printf("Photon energy total  : %.4f eV\n", m.PhotonEnergyTotal)
}
