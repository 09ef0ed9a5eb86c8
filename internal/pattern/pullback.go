package pattern

import (
	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// Pullback fires on the first dip after a breakout from a depressed base. Walking back
// from the most recent bar the EMA5/10/20 crossings split the history into the current
// pullback (section 1), the breakout run (section 2) and the base (section 3).
type Pullback struct{}

func NewPullback() *Pullback {
	return &Pullback{}
}

func (p *Pullback) Name() types.PatternName {
	return types.PatternPullbackAfterBreakout
}

func (p *Pullback) Evaluate(series types.Series, ind *indicator.Snapshot) (bool, error) {
	if err := needBars(series, 2, "pullback"); err != nil {
		return false, err
	}

	ema5, err := ind.EMA(5)
	if err != nil {
		return false, err
	}

	ema10, err := ind.EMA(10)
	if err != nil {
		return false, err
	}

	ema20, err := ind.EMA(20)
	if err != nil {
		return false, err
	}

	closes := ind.Closes()
	if closes[0] >= closes[1] {
		return false, nil
	}

	if ema5[0] >= min(ema10[0], ema20[0]) {
		return false, nil
	}

	n := len(ema20)
	i := 0

	for i < n && ema5[i] < max(ema10[i], ema20[i]) {
		i++
	}

	if i == n {
		return false, sectionError(n, "pullback")
	}

	p0 := i

	for i < n && ema5[i] > min(ema10[i], ema20[i]) {
		i++
	}

	if i == n {
		return false, sectionError(n, "breakout")
	}

	p1 := i

	for i < n && (ema5[i] < max(ema10[i], ema20[i]) || ema10[i] < ema20[i]) {
		i++
	}

	if i == n {
		return false, sectionError(n, "base")
	}

	p2 := i

	if p0 == p1 || p1 == p2 {
		return false, nil
	}

	entry := closes[p2]
	baseLow := minOf(closes[p1:p2])
	breakoutHigh := maxOf(closes[p0:p1])

	switch {
	case baseLow > entry*0.8:
		return false, nil
	case breakoutHigh < baseLow*1.05:
		return false, nil
	case closes[0] < breakoutHigh*0.85:
		return false, nil
	case closes[0] < minOf(closes[1:p2]):
		return false, nil
	}

	return true, nil
}

func sectionError(n int, section string) error {
	return errors.NewInsufficientDataErrorf(n+1, n, "", "%s section runs past the EMA(20) history", section)
}
