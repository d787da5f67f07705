package quant

import (
	"math"

	"github.com/bobmcallan/tally/internal/models"
)

// EstimateBetaAlpha fits ordinary least squares of stock returns (dependent)
// on benchmark returns (independent) over their exact date intersection.
// Slope is beta, intercept is alpha. Fails with InsufficientDataError when
// fewer than 2 aligned points remain.
func EstimateBetaAlpha(stockPrices, benchmarkPrices []models.PricePoint) (*models.RegressionResult, error) {
	stock, bench := AlignReturns(Returns(stockPrices), Returns(benchmarkPrices))

	y := make([]float64, len(stock))
	x := make([]float64, len(bench))
	for i := range stock {
		y[i] = stock[i].Return
		x[i] = bench[i].Return
	}

	return fitOLS(x, y)
}

// fitOLS performs the least-squares fit of y on x with the usual summary
// statistics: correlation, two-sided p-value for the slope (Student's t),
// and the standard error of the slope.
func fitOLS(x, y []float64) (*models.RegressionResult, error) {
	n := len(x)
	if n < 2 {
		return nil, &models.InsufficientDataError{
			Computation: "beta/alpha regression",
			Points:      n,
			Required:    2,
		}
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, syy, sxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}

	if sxx == 0 {
		return nil, &models.InsufficientDataError{
			Computation: "beta/alpha regression",
			Points:      n,
			Required:    2,
			Reason:      "benchmark returns have zero variance",
		}
	}

	beta := sxy / sxx
	alpha := meanY - beta*meanX

	var r float64
	if syy > 0 {
		r = sxy / math.Sqrt(sxx*syy)
		// Clamp rounding noise outside [-1, 1]
		if r > 1 {
			r = 1
		} else if r < -1 {
			r = -1
		}
	}

	df := float64(n - 2)
	pValue := 1.0
	stdErr := 0.0
	if df > 0 {
		residual := syy - beta*sxy
		if residual < 0 {
			residual = 0
		}
		stdErr = math.Sqrt(residual / df / sxx)

		if r2 := r * r; r2 >= 1 {
			pValue = 0
		} else {
			t := r * math.Sqrt(df/(1-r*r))
			pValue = twoSidedTTest(t, df)
		}
	}

	return &models.RegressionResult{
		Beta:   beta,
		Alpha:  alpha,
		RValue: r,
		PValue: pValue,
		StdErr: stdErr,
		Points: n,
	}, nil
}

// twoSidedTTest returns the two-sided p-value for a t statistic with df
// degrees of freedom: P(|T| >= |t|) = I_{df/(df+t^2)}(df/2, 1/2).
func twoSidedTTest(t, df float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	p := regularizedIncompleteBeta(df/2, 0.5, df/(df+t*t))
	if p > 1 {
		p = 1
	}
	return p
}

// regularizedIncompleteBeta computes I_x(a, b) by continued fraction
// (Numerical Recipes betai/betacf).
func regularizedIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lgA, _ := math.Lgamma(a)
	lgB, _ := math.Lgamma(b)
	lgAB, _ := math.Lgamma(a + b)
	front := math.Exp(lgAB - lgA - lgB + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaContinuedFraction(a, b, x) / a
	}
	return 1 - front*betaContinuedFraction(b, a, 1-x)/b
}

func betaContinuedFraction(a, b, x float64) float64 {
	const (
		maxIterations = 200
		epsilon       = 3e-14
		fpMin         = 1e-300
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpMin {
		d = fpMin
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIterations; m++ {
		m2 := float64(2 * m)
		aa := float64(m) * (b - float64(m)) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpMin {
			d = fpMin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpMin {
			c = fpMin
		}
		d = 1 / d
		h *= d * c

		aa = -(a + float64(m)) * (qab + float64(m)) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpMin {
			d = fpMin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpMin {
			c = fpMin
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < epsilon {
			break
		}
	}

	return h
}
