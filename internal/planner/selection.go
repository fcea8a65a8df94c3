package planner

import (
	"github.com/chargeroute/chargeroute/internal/battery"
	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/stations"
)

// scoreEpsilon keeps the progress score finite for a candidate sitting on the
// destination.
const scoreEpsilon = 1e-5

// filterTowardDestination keeps candidates strictly closer to the destination
// than the current position. This guarantees monotonic progress and prevents
// the planner from cycling between stations.
func filterTowardDestination(candidates []stations.Candidate, current, destination geo.Coordinate) []stations.Candidate {
	currentToDest := geo.DistanceKm(current, destination)

	kept := make([]stations.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if geo.DistanceKm(c.Location, destination) < currentToDest {
			kept = append(kept, c)
		}
	}
	return kept
}

// filterReachable keeps candidates whose leg cost fits in the usable battery
// (state of charge above the reserve floor). The boundary is inclusive: a
// candidate exactly at the limit is reachable. rangeKm is the derated range
// used for costing the leg.
func (s *Service) filterReachable(candidates []stations.Candidate, current geo.Coordinate, batteryPercent, rangeKm float64) []stations.Candidate {
	usable := batteryPercent - s.cfg.ReservePercent

	kept := make([]stations.Candidate, 0, len(candidates))
	for _, c := range candidates {
		cost := battery.PercentForDistance(geo.DistanceKm(current, c.Location), rangeKm)
		if cost <= usable {
			kept = append(kept, c)
		}
	}
	return kept
}

// rank returns the highest-scoring candidate. The score rewards proximity to
// the destination, with an optional path-adherence term weighted by
// PathAdherenceWeight. Ties keep the earlier candidate, so discovery order is
// the tie-break.
func (s *Service) rank(candidates []stations.Candidate, destination geo.Coordinate, path []geo.Coordinate) (stations.Candidate, bool) {
	if len(candidates) == 0 {
		return stations.Candidate{}, false
	}

	best := candidates[0]
	bestScore := s.score(best, destination, path)
	for _, c := range candidates[1:] {
		if score := s.score(c, destination, path); score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best, true
}

func (s *Service) score(c stations.Candidate, destination geo.Coordinate, path []geo.Coordinate) float64 {
	score := 1 / (geo.DistanceKm(c.Location, destination) + scoreEpsilon)
	if s.cfg.PathAdherenceWeight > 0 && len(path) > 0 {
		score += s.cfg.PathAdherenceWeight / (distanceToPathKm(c.Location, path) + scoreEpsilon)
	}
	return score
}

// distanceToPathKm is the distance from p to the nearest path vertex.
func distanceToPathKm(p geo.Coordinate, path []geo.Coordinate) float64 {
	nearest := geo.DistanceKm(p, path[0])
	for _, v := range path[1:] {
		if d := geo.DistanceKm(p, v); d < nearest {
			nearest = d
		}
	}
	return nearest
}
