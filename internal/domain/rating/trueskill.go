// Package rating maintains TrueSkill ratings over a chronological match
// history.
package rating

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Config holds the model parameters.
type Config struct {
	Mu              float64
	Sigma           float64
	Beta            float64
	Tau             float64
	DrawProbability float64
}

func DefaultConfig() Config {
	return Config{
		Mu:              25,
		Sigma:           25.0 / 3,
		Beta:            5.5,
		Tau:             0.12,
		DrawProbability: 0.10,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Sigma <= 0:
		return fmt.Errorf("rating sigma must be > 0")
	case c.Beta <= 0:
		return fmt.Errorf("rating beta must be > 0")
	case c.Tau < 0:
		return fmt.Errorf("rating tau must be >= 0")
	case c.DrawProbability < 0 || c.DrawProbability >= 1:
		return fmt.Errorf("rating draw probability must be in [0, 1)")
	}
	return nil
}

type Rating struct {
	Mu    float64
	Sigma float64
}

// Conservative is the published skill value, mu - 3 sigma.
func (r Rating) Conservative() float64 {
	return r.Mu - 3*r.Sigma
}

type Outcome int

const (
	Team1Wins Outcome = iota
	Team2Wins
	Draw
)

var ErrNumerical = errors.New("rating update is numerically unstable")

// minDenominator guards the truncated Gaussian ratios against underflow.
const minDenominator = 1e-300

// Model applies the two-team TrueSkill update in closed form.
//
// With every participant's variance first widened by tau, and
//
//	c^2 = sum(sigma_i^2 + beta^2)   over both teams
//	t   = (mu_winner - mu_loser) / c
//	e   = Phi^-1((p + 1) / 2) * sqrt(n) * beta / c
//
// a decisive result uses v = N(t-e)/Phi(t-e), w = v(v+t-e); a draw uses
// the two-sided truncation of [-e, e]. Winners gain sigma_i^2/c * v, losers
// lose the same, and each variance is scaled by 1 - sigma_i^2/c^2 * w.
type Model struct {
	cfg Config
}

func NewModel(cfg Config) Model {
	return Model{cfg: cfg}
}

func (m Model) Prior() Rating {
	return Rating{Mu: m.cfg.Mu, Sigma: m.cfg.Sigma}
}

// Rate returns the updated ratings in input order. An error leaves the
// caller's ratings untouched.
func (m Model) Rate(team1, team2 []Rating, outcome Outcome) ([]Rating, []Rating, error) {
	if len(team1) == 0 || len(team2) == 0 {
		return nil, nil, fmt.Errorf("%w: both teams need players", ErrNumerical)
	}

	widen := func(in []Rating) []Rating {
		out := make([]Rating, len(in))
		for i, r := range in {
			out[i] = Rating{Mu: r.Mu, Sigma: math.Sqrt(r.Sigma*r.Sigma + m.cfg.Tau*m.cfg.Tau)}
		}
		return out
	}
	winners, losers := widen(team1), widen(team2)
	if outcome == Team2Wins {
		winners, losers = losers, winners
	}

	n := float64(len(team1) + len(team2))
	beta2 := m.cfg.Beta * m.cfg.Beta
	c2 := 0.0
	muWin, muLose := 0.0, 0.0
	for _, r := range winners {
		c2 += r.Sigma*r.Sigma + beta2
		muWin += r.Mu
	}
	for _, r := range losers {
		c2 += r.Sigma*r.Sigma + beta2
		muLose += r.Mu
	}
	c := math.Sqrt(c2)
	if !(c > 0) || math.IsInf(c, 0) {
		return nil, nil, fmt.Errorf("%w: team variance %v", ErrNumerical, c2)
	}

	t := (muWin - muLose) / c
	eps := drawMargin(m.cfg.DrawProbability, n, m.cfg.Beta) / c

	var v, w float64
	var err error
	if outcome == Draw {
		v, w, err = truncateDraw(t, eps)
	} else {
		v, w, err = truncateWin(t, eps)
	}
	if err != nil {
		return nil, nil, err
	}

	update := func(in []Rating, sign float64) ([]Rating, error) {
		out := make([]Rating, len(in))
		for i, r := range in {
			s2 := r.Sigma * r.Sigma
			mu := r.Mu + sign*s2/c*v
			variance := s2 * (1 - s2/c2*w)
			if !(variance > 0) || math.IsNaN(mu) || math.IsInf(mu, 0) {
				return nil, fmt.Errorf("%w: posterior mu=%v variance=%v", ErrNumerical, mu, variance)
			}
			out[i] = Rating{Mu: mu, Sigma: math.Sqrt(variance)}
		}
		return out, nil
	}

	newWinners, err := update(winners, 1)
	if err != nil {
		return nil, nil, err
	}
	newLosers, err := update(losers, -1)
	if err != nil {
		return nil, nil, err
	}
	if outcome == Team2Wins {
		return newLosers, newWinners, nil
	}
	return newWinners, newLosers, nil
}

func drawMargin(p, n, beta float64) float64 {
	if p <= 0 {
		return 0
	}
	return distuv.UnitNormal.Quantile((p+1)/2) * math.Sqrt(n) * beta
}

func truncateWin(t, eps float64) (float64, float64, error) {
	x := t - eps
	denom := distuv.UnitNormal.CDF(x)
	if denom < minDenominator {
		return 0, 0, fmt.Errorf("%w: win truncation at %v", ErrNumerical, x)
	}
	v := distuv.UnitNormal.Prob(x) / denom
	w := v * (v + x)
	if !(w > 0 && w < 1) {
		return 0, 0, fmt.Errorf("%w: win variance factor %v", ErrNumerical, w)
	}
	return v, w, nil
}

// truncateDraw works on |t| and restores the sign on v, since the draw
// window is symmetric.
func truncateDraw(t, eps float64) (float64, float64, error) {
	abs := math.Abs(t)
	a, b := eps-abs, -eps-abs
	denom := distuv.UnitNormal.CDF(a) - distuv.UnitNormal.CDF(b)
	if denom < minDenominator {
		return 0, 0, fmt.Errorf("%w: draw truncation at %v", ErrNumerical, t)
	}
	v := (distuv.UnitNormal.Prob(b) - distuv.UnitNormal.Prob(a)) / denom
	w := v*v + (a*distuv.UnitNormal.Prob(a)-b*distuv.UnitNormal.Prob(b))/denom
	if t < 0 {
		v = -v
	}
	if math.IsNaN(v) || !(w > 0 && w < 1) {
		return 0, 0, fmt.Errorf("%w: draw variance factor %v", ErrNumerical, w)
	}
	return v, w, nil
}
