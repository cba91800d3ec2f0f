package engine

import "fmt"

// DirichletParams configures root exploration noise:
// prior' = (1-Epsilon)*prior + Epsilon*Dir(Alpha).
type DirichletParams struct {
	Alpha   float64
	Epsilon float64
}

// DefaultDirichlet returns the usual chess setting.
func DefaultDirichlet() *DirichletParams {
	return &DirichletParams{Alpha: 0.3, Epsilon: 0.25}
}

// SearchOptions configures one root decision.
type SearchOptions struct {
	Simulations   int
	CPuct         float64
	Dirichlet     *DirichletParams // nil disables root noise
	FallbackPrior float32          // prior for moves without an action index
	Seed          uint64           // seeds the noise generator
}

// DefaultSearchOptions returns match-play settings without noise.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Simulations:   800,
		CPuct:         1.5,
		FallbackPrior: 1e-3,
	}
}

func (o SearchOptions) validate() error {
	if o.Simulations < 1 {
		return fmt.Errorf("engine: simulations must be positive, got %d", o.Simulations)
	}
	if o.CPuct < 0 {
		return fmt.Errorf("engine: exploration constant must not be negative, got %g", o.CPuct)
	}
	if o.FallbackPrior < 0 {
		return fmt.Errorf("engine: fallback prior must not be negative, got %g", o.FallbackPrior)
	}
	if d := o.Dirichlet; d != nil {
		if d.Alpha <= 0 {
			return fmt.Errorf("engine: dirichlet alpha must be positive, got %g", d.Alpha)
		}
		if d.Epsilon < 0 || d.Epsilon > 1 {
			return fmt.Errorf("engine: dirichlet epsilon must be in [0, 1], got %g", d.Epsilon)
		}
	}
	return nil
}

// TemperatureSchedule anneals the move-sampling temperature linearly from
// Initial to Floor over the first AnnealPlies plies.
type TemperatureSchedule struct {
	Initial     float64
	Floor       float64
	AnnealPlies int
}

// DefaultTemperature returns the self-play schedule.
func DefaultTemperature() TemperatureSchedule {
	return TemperatureSchedule{Initial: 1.0, Floor: 0.05, AnnealPlies: 30}
}

// At returns the temperature for the given ply (0 = first move of the game).
func (s TemperatureSchedule) At(ply int) float64 {
	if s.AnnealPlies <= 0 || ply >= s.AnnealPlies {
		return s.Floor
	}
	frac := float64(ply) / float64(s.AnnealPlies)
	return s.Initial + (s.Floor-s.Initial)*frac
}
