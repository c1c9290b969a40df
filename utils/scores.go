package utils

// RankAscending returns the standard competition rank ("1224") of each score in a slice that is
// already sorted ascending with unscored entries last. Equal scores share a rank; unscored
// entries get rank 0.
func RankAscending(scores []*float64) []int {
	ranks := make([]int, len(scores))
	for i, score := range scores {
		switch {
		case score == nil:
			ranks[i] = 0
		case i > 0 && scores[i-1] != nil && *scores[i-1] == *score:
			ranks[i] = ranks[i-1]
		default:
			ranks[i] = i + 1
		}
	}
	return ranks
}
