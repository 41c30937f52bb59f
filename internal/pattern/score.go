package pattern

// Score rates how specific p is. More specific patterns score higher.
func Score(p Pattern) float64 {
	return float64(scoreTenths(p)) / 10
}

// scoreTenths is Score in tenths so that equal scores compare equal.
func scoreTenths(p Pattern) int {
	score := 5
	switch p.Dialect() {
	case Regex:
		score += 3
	case Suffix, Prefix:
		score += 2
	}
	if p.NameExtraction != "" {
		score++
	}
	if len(p.ExcludePatterns) > 0 {
		score++
	}
	return min(score, 10)
}

// BestMatch returns the highest scoring pattern in ps that matches path.
// Ties keep the earliest candidate. Patterns that fail with an error are
// skipped; the first such error is returned alongside the result.
func (m *Matcher) BestMatch(path string, ps []Pattern) (best *Pattern, score float64, firstErr error) {
	bestTenths := 0
	for i := range ps {
		ok, err := m.Matches(path, ps[i])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !ok {
			continue
		}
		if s := scoreTenths(ps[i]); best == nil || s > bestTenths {
			best, bestTenths = &ps[i], s
		}
	}
	if best == nil {
		return nil, 0, firstErr
	}
	return best, float64(bestTenths) / 10, firstErr
}
