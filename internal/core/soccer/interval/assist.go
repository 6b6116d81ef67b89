package interval

// ScorerProb pairs a player index with a probability (a scoring or assisting
// rate). The last entry in any such slice is always the shared "Other"
// residual slot.
type ScorerProb struct {
	Index int
	Prob  float64
}

// AssistOption is one candidate assister for a just-scored goal: Assister is
// nil for "no assist credited".
type AssistOption struct {
	Assister *int
	Prob     float64
}

// assistOptions enumerates, for a goal scored by scorerIndex, every assister
// candidate and its probability: each named assister (skipped if it is the
// scorer itself, unless that assister slot is the shared Other residual),
// the Other residual (soaking up whatever probability mass the named
// assisters didn't claim), and finally "no assist". Grounded on
// original_source/brumby-soccer/src/interval/assist.rs's Iter — preserving
// its exact rule that "a player cannot assist themselves unless the
// assister resolves to Other".
func assistOptions(assistProb float64, assisters []ScorerProb, scorerIndex int) []AssistOption {
	otherIndex := assisters[len(assisters)-1].Index
	remaining := 1.0
	pos := 0
	var out []AssistOption

	for pos <= len(assisters) {
		if pos == len(assisters) {
			pos++
			if noAssistProb := 1.0 - assistProb; noAssistProb > 0 {
				out = append(out, AssistOption{Assister: nil, Prob: noAssistProb})
			}
			continue
		}

		assister, prob := assisters[pos].Index, assisters[pos].Prob
		if assister != otherIndex && assister == scorerIndex {
			pos++
			assister, prob = assisters[pos].Index, assisters[pos].Prob
		}
		pos++

		var effective float64
		if assister == otherIndex {
			effective = remaining
		} else {
			remaining -= prob
			effective = prob
		}
		if merged := assistProb * effective; merged > 0 {
			idx := assister
			out = append(out, AssistOption{Assister: &idx, Prob: merged})
		}
	}
	return out
}
