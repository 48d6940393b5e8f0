package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/mikey/spamguard/internal/core"
)

// MultinomialNB is a multinomial naive Bayes classifier
type MultinomialNB struct {
	Classes        []core.Label `yaml:"classes"`
	ClassLogPrior  []float64    `yaml:"class_log_prior"`
	FeatureLogProb [][]float64  `yaml:"feature_log_prob"`
}

// LinearModel is a binary linear decision function, as produced by
// logistic regression or a linear SVM
type LinearModel struct {
	Classes   []core.Label `yaml:"classes"`
	Coef      []float64    `yaml:"coef"`
	Intercept float64      `yaml:"intercept"`
}

var (
	_ core.Classifier = (*MultinomialNB)(nil)
	_ core.Classifier = (*LinearModel)(nil)
)

// Dim returns the number of features the model expects
func (m *MultinomialNB) Dim() int {
	if len(m.FeatureLogProb) == 0 {
		return 0
	}
	return len(m.FeatureLogProb[0])
}

// Validate checks that priors, classes and feature weights agree
func (m *MultinomialNB) Validate() error {
	k := len(m.Classes)
	if k == 0 {
		return errors.New("naive bayes: no classes")
	}
	if len(m.ClassLogPrior) != k || len(m.FeatureLogProb) != k {
		return fmt.Errorf("naive bayes: %d classes, %d priors, %d weight rows",
			k, len(m.ClassLogPrior), len(m.FeatureLogProb))
	}
	dim := m.Dim()
	if dim == 0 {
		return errors.New("naive bayes: no features")
	}
	for i, row := range m.FeatureLogProb {
		if len(row) != dim {
			return fmt.Errorf("naive bayes: weight row %d has %d features, want %d", i, len(row), dim)
		}
	}
	return nil
}

// Predict returns the class with the highest joint log likelihood for each vector
func (m *MultinomialNB) Predict(batch []core.FeatureVector) ([]core.Label, error) {
	dim := m.Dim()
	labels := make([]core.Label, len(batch))

	for n, x := range batch {
		if len(x) != dim {
			return nil, fmt.Errorf("naive bayes: vector %d has %d features, want %d", n, len(x), dim)
		}

		best, bestScore := 0, math.Inf(-1)
		for c, row := range m.FeatureLogProb {
			score := m.ClassLogPrior[c]
			for i, v := range x {
				if v != 0 {
					score += v * row[i]
				}
			}
			if score > bestScore {
				best, bestScore = c, score
			}
		}
		labels[n] = m.Classes[best]
	}

	return labels, nil
}

// Dim returns the number of features the model expects
func (m *LinearModel) Dim() int {
	return len(m.Coef)
}

// Validate checks the coefficient vector and class labels
func (m *LinearModel) Validate() error {
	if len(m.Classes) != 2 {
		return fmt.Errorf("linear model: %d classes, want 2", len(m.Classes))
	}
	if len(m.Coef) == 0 {
		return errors.New("linear model: no coefficients")
	}
	return nil
}

// Predict returns Classes[1] when the decision function is positive, else Classes[0]
func (m *LinearModel) Predict(batch []core.FeatureVector) ([]core.Label, error) {
	labels := make([]core.Label, len(batch))

	for n, x := range batch {
		if len(x) != len(m.Coef) {
			return nil, fmt.Errorf("linear model: vector %d has %d features, want %d", n, len(x), len(m.Coef))
		}

		decision := m.Intercept
		for i, v := range x {
			decision += v * m.Coef[i]
		}

		if decision > 0 {
			labels[n] = m.Classes[1]
		} else {
			labels[n] = m.Classes[0]
		}
	}

	return labels, nil
}
