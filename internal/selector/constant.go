package selector

// Constant fits the fallback state count without searching.
type Constant struct {
	*base
}

// Strategy returns StrategyConstant.
func (s *Constant) Strategy() Strategy { return StrategyConstant }

// Select fits the Constant state count on the word's sequences.
func (s *Constant) Select() Result {
	r := Result{
		Word:     s.cfg.Word,
		Strategy: StrategyConstant,
		States:   s.cfg.Constant,
	}

	m, err := s.constant()
	if err != nil {
		r.Outcome = OutcomeAbsent
		r.Cause = err
		r.Candidates = []Candidate{{States: s.cfg.Constant, Status: CandidateFitFailed, Err: err}}
		return r
	}

	r.Model = m
	r.Outcome = OutcomeConstant
	return r
}
