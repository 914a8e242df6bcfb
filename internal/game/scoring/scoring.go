// Package scoring turns peer rankings into consensus-weighted scores.
//
// Each ranker in a group of size G orders every group member best first.
// A member placed at position p (zero-based) earns G-p points from that
// ranker. The member's final score is the mean of their received points,
// scaled down by how much the rankers disagreed: perfectly aligned rankers
// pass the mean through untouched, maximally split rankers zero it out.
package scoring

import "sort"

// MaxVariance is the largest population variance a set of points drawn
// from {1..g} can reach, (g^3-g)/12. It normalizes the disagreement
// penalty so the consensus factor lands in [0,1].
func MaxVariance(g int) float64 {
	n := float64(g)
	return (n*n*n - n) / 12
}

// Mean returns the arithmetic mean of points. Zero for an empty slice.
func Mean(points []float64) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p
	}
	return sum / float64(len(points))
}

// Variance returns the population variance of points. Zero for an empty
// slice.
func Variance(points []float64) float64 {
	if len(points) == 0 {
		return 0
	}
	mean := Mean(points)
	var sum float64
	for _, p := range points {
		d := p - mean
		sum += d * d
	}
	return sum / float64(len(points))
}

// Score computes one member's consensus-weighted score from the points
// received across rankers in a group of size groupSize:
//
//	score = mean(points) * max(0, 1 - variance(points)/MaxVariance(groupSize))
//
// Full agreement keeps the mean intact; disagreement at or beyond the
// theoretical maximum yields zero.
func Score(points []float64, groupSize int) float64 {
	if len(points) == 0 {
		return 0
	}
	consensus := 1 - Variance(points)/MaxVariance(groupSize)
	if consensus < 0 {
		consensus = 0
	}
	return Mean(points) * consensus
}

// MemberScore pairs a group member with their computed score.
type MemberScore struct {
	MemberID string
	Score    float64
}

// ScoreGroup scores every member of a group from the submitted rankings
// and returns them ordered best first. rankings maps ranker ID to their
// ordered member list (best first); members who skipped ranking simply
// contribute no points. Ties break by tieSeq, lower first, so the result
// is deterministic.
//
// The returned slice covers every group member, including those who
// received no points.
func ScoreGroup(members []string, rankings map[string][]string, tieSeq map[string]uint64) []MemberScore {
	g := len(members)
	points := make(map[string][]float64, g)
	for _, id := range members {
		points[id] = nil
	}

	for _, ordered := range rankings {
		for pos, id := range ordered {
			if _, ok := points[id]; !ok {
				continue
			}
			points[id] = append(points[id], float64(g-pos))
		}
	}

	scores := make([]MemberScore, 0, g)
	for _, id := range members {
		scores = append(scores, MemberScore{
			MemberID: id,
			Score:    Score(points[id], g),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return tieSeq[scores[i].MemberID] < tieSeq[scores[j].MemberID]
	})
	return scores
}
