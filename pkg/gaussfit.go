package gain

import (
	"errors"
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"go-hep.org/x/hep/fit"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Relative margins of the fit window around a detected peak. The high side
// is wider to follow the positive skew of the p.e. peaks.
const (
	WindowLowMargin  = 0.025
	WindowHighMargin = 0.027
)

const (
	MethodNone        = "none"
	MethodLM          = "levenberg-marquardt"
	MethodNelderMead  = "nelder-mead"
	minPointsGaussFit = 3
)

type FitWindow struct {
	Low  float64
	High float64
}

func (w FitWindow) Contains(x float64) bool {
	return x >= w.Low && x <= w.High
}

func PeakWindow(position float64) FitWindow {
	return FitWindow{
		Low:  position * (1 - WindowLowMargin),
		High: position * (1 + WindowHighMargin),
	}
}

// PeakFit is the Gaussian fit of one p.e. peak. Mu and ErrMu are reported
// even when Converged is false.
type PeakFit struct {
	Index     int
	Seed      float64
	Window    FitWindow
	Amplitude float64
	Mu        float64
	ErrMu     float64
	Sigma     float64
	Chi2      float64
	NDF       int
	Converged bool
	Method    string
	Reason    string
}

func gaussian(x float64, ps []float64) float64 {
	z := (x - ps[1]) / ps[2]
	return ps[0] * math.Exp(-0.5*z*z)
}

// FitPeak fits A*exp(-((x-mu)/sigma)^2/2) to the populated bins whose
// centers fall in PeakWindow(seed), with Poisson bin errors. The mean is
// seeded at seed.
func FitPeak(s *Spectrum, index int, seed float64) PeakFit {
	win := PeakWindow(seed)
	pf := PeakFit{
		Index:  index,
		Seed:   seed,
		Window: win,
		Mu:     seed,
		Method: MethodNone,
	}

	var xs, ys, errs []float64
	for i := 0; i < s.Len(); i++ {
		x := s.BinCenter(i)
		c := s.Count(i)
		if c <= 0 || !win.Contains(x) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, c)
		errs = append(errs, math.Sqrt(c))
	}
	pf.NDF = len(xs) - minPointsGaussFit
	if len(xs) < minPointsGaussFit {
		pf.Reason = fmt.Sprintf("%d populated bins in window [%.1f, %.1f]", len(xs), win.Low, win.High)
		return pf
	}

	p0 := []float64{floats.Max(ys), seed, windowRMS(xs, ys, seed)}
	if p0[2] <= 0 {
		p0[2] = s.BinWidth()
	}

	ps, method, err := minimizeChi2(xs, ys, errs, p0)
	pf.Method = method
	if err != nil {
		pf.Reason = err.Error()
		return pf
	}
	pf.Amplitude = ps[0]
	pf.Mu = ps[1]
	pf.Sigma = math.Abs(ps[2])
	pf.Chi2 = chi2(xs, ys, errs, ps)

	cov, err := covariance(xs, errs, ps)
	if err != nil {
		pf.Reason = fmt.Sprintf("covariance: %v", err)
		return pf
	}
	errMu := math.Sqrt(cov.At(1, 1))
	if math.IsNaN(errMu) || math.IsInf(errMu, 0) {
		pf.Reason = "undefined error on mean"
		return pf
	}
	pf.ErrMu = errMu

	switch {
	case pf.Amplitude <= 0:
		pf.Reason = "negative amplitude"
	case !win.Contains(pf.Mu):
		pf.Reason = fmt.Sprintf("mean %.1f outside window [%.1f, %.1f]", pf.Mu, win.Low, win.High)
	default:
		pf.Converged = true
	}
	return pf
}

// FitPeaks fits every position in order; positions must already be sorted.
func FitPeaks(s *Spectrum, positions []float64) []PeakFit {
	fits := make([]PeakFit, len(positions))
	for i, pos := range positions {
		fits[i] = FitPeak(s, i, pos)
	}
	return fits
}

func minimizeChi2(xs, ys, errs, p0 []float64) ([]float64, string, error) {
	residuals := func(dst, ps []float64) {
		for i, x := range xs {
			dst[i] = (ys[i] - gaussian(x, ps)) / errs[i]
		}
	}
	jacobian := lm.NumJac{Func: residuals}
	problem := lm.LMProblem{
		Dim:        len(p0),
		Size:       len(xs),
		Func:       residuals,
		Jac:        jacobian.Jac,
		InitParams: p0,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}
	result, err := lm.LM(problem, &lm.Settings{Iterations: 1000, ObjectiveTol: 1e-16})
	if err == nil && allFinite(result.X) && result.X[2] != 0 {
		return result.X, MethodLM, nil
	}

	// retry with a derivative-free minimiser
	res, err := fit.Curve1D(
		fit.Func1D{
			F:   gaussian,
			X:   xs,
			Y:   ys,
			Err: errs,
			Ps:  append([]float64(nil), p0...),
		},
		nil, &optimize.NelderMead{},
	)
	if err != nil {
		return nil, MethodNelderMead, fmt.Errorf("minimization failed: %w", err)
	}
	if !allFinite(res.X) || res.X[2] == 0 {
		return nil, MethodNelderMead, errors.New("minimization returned undefined parameters")
	}
	return res.X, MethodNelderMead, nil
}

// covariance returns (JᵀJ)⁻¹ of the error-scaled model at ps.
func covariance(xs, errs, ps []float64) (*mat.Dense, error) {
	jac := mat.NewDense(len(xs), len(ps), nil)
	fd.Jacobian(jac, func(y, q []float64) {
		for i, x := range xs {
			y[i] = gaussian(x, q) / errs[i]
		}
	}, ps, nil)
	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)
	var cov mat.Dense
	if err := cov.Inverse(&jtj); err != nil {
		return nil, err
	}
	return &cov, nil
}

func chi2(xs, ys, errs, ps []float64) float64 {
	var sum float64
	for i, x := range xs {
		r := (ys[i] - gaussian(x, ps)) / errs[i]
		sum += r * r
	}
	return sum
}

func windowRMS(xs, ys []float64, center float64) float64 {
	var sw, swx2 float64
	for i, x := range xs {
		d := x - center
		sw += ys[i]
		swx2 += ys[i] * d * d
	}
	if sw == 0 {
		return 0
	}
	return math.Sqrt(swx2 / sw)
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return len(xs) > 0
}
