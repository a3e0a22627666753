package stats

import "neurowire/internal/model"

// Summary condenses a survivor series.
type Summary struct {
	Generations    int     `json:"generations"`
	LastSurvivors  int     `json:"last_survivors"`
	LastRatio      float64 `json:"last_ratio"`
	BestSurvivors  int     `json:"best_survivors"`
	BestGeneration int     `json:"best_generation"`
	MeanRatio      float64 `json:"mean_ratio"`
}

// Ratio is the survivor share of a generation, 0 for an empty population.
func Ratio(point model.SurvivorPoint) float64 {
	if point.Population <= 0 {
		return 0
	}
	return float64(point.Survivors) / float64(point.Population)
}

func Summarize(history []model.SurvivorPoint) Summary {
	var s Summary
	if len(history) == 0 {
		return s
	}
	s.Generations = len(history)
	total := 0.0
	for i, point := range history {
		total += Ratio(point)
		if i == 0 || point.Survivors > s.BestSurvivors {
			s.BestSurvivors = point.Survivors
			s.BestGeneration = point.Generation
		}
	}
	last := history[len(history)-1]
	s.LastSurvivors = last.Survivors
	s.LastRatio = Ratio(last)
	s.MeanRatio = total / float64(len(history))
	return s
}
