package gain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Domain of the calibration line, in photoelectrons.
const (
	LinearFitMin = 0
	LinearFitMax = 40000
)

// LinearFit is the calibration line mu = Offset + Gain*n_pe.
type LinearFit struct {
	Offset    float64
	ErrOffset float64
	Gain      float64
	ErrGain   float64
	Points    int
	Weighted  bool
	// MissingErrors counts the means whose error was zero or undefined.
	MissingErrors int
}

// FitLine fits the sorted peak means against their photoelectron count.
// Points are weighted by 1/errMu². A mean with a zero or undefined error
// takes the largest error of the others. When no error is usable the fit is
// unweighted and the parameter errors are scaled by the residual variance.
func FitLine(mu, errMu []float64) (LinearFit, error) {
	if len(errMu) != len(mu) {
		return LinearFit{}, fmt.Errorf("linear fit: %d means but %d errors", len(mu), len(errMu))
	}
	var xs, ys, es []float64
	for i := range mu {
		x := PhotoelectronCount(i)
		if x < LinearFitMin || x > LinearFitMax {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, mu[i])
		es = append(es, errMu[i])
	}

	switch len(xs) {
	case 0:
		return LinearFit{}, ErrNoPeaks
	case 1:
		return LinearFit{Offset: ys[0], ErrOffset: es[0], Points: 1}, ErrUnderdetermined
	}

	weights, missing := inverseVariance(es)
	offset, gain := stat.LinearRegression(xs, ys, weights, false)
	line := LinearFit{
		Offset:        offset,
		Gain:          gain,
		Points:        len(xs),
		Weighted:      weights != nil,
		MissingErrors: missing,
	}

	cov, err := lineCovariance(xs, weights)
	if err != nil {
		return line, fmt.Errorf("linear fit covariance: %w", err)
	}
	scale := 1.0
	if weights == nil {
		scale = residualVariance(xs, ys, offset, gain)
	}
	line.ErrOffset = math.Sqrt(scale * cov.At(0, 0))
	line.ErrGain = math.Sqrt(scale * cov.At(1, 1))
	return line, nil
}

// inverseVariance returns nil weights when no error is usable.
func inverseVariance(errs []float64) ([]float64, int) {
	largest := 0.0
	for _, e := range errs {
		if usableError(e) && e > largest {
			largest = e
		}
	}
	missing := 0
	w := make([]float64, len(errs))
	for i, e := range errs {
		if !usableError(e) {
			missing++
			e = largest
		}
		if e > 0 {
			w[i] = 1 / (e * e)
		}
	}
	if largest == 0 {
		return nil, missing
	}
	return w, missing
}

func usableError(e float64) bool {
	return e > 0 && !math.IsInf(e, 0)
}

// lineCovariance returns (XᵀWX)⁻¹ for the design matrix [1 x].
// A nil weights slice means unit weights.
func lineCovariance(xs, weights []float64) (*mat.Dense, error) {
	n := len(xs)
	design := mat.NewDense(n, 2, nil)
	w := make([]float64, n)
	for i, x := range xs {
		design.Set(i, 0, 1)
		design.Set(i, 1, x)
		w[i] = 1
		if weights != nil {
			w[i] = weights[i]
		}
	}
	var xtw, xtwx mat.Dense
	xtw.Mul(design.T(), mat.NewDiagDense(n, w))
	xtwx.Mul(&xtw, design)
	var cov mat.Dense
	if err := cov.Inverse(&xtwx); err != nil {
		return nil, err
	}
	return &cov, nil
}

// residualVariance is zero for two points: the line passes through both.
func residualVariance(xs, ys []float64, offset, gain float64) float64 {
	if len(xs) <= 2 {
		return 0
	}
	var ss float64
	for i, x := range xs {
		r := ys[i] - (offset + gain*x)
		ss += r * r
	}
	return ss / float64(len(xs)-2)
}
