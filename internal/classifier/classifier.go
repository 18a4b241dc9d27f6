package classifier

import (
	"errors"
	"fmt"
	"math"

	"github.com/rmera/boo"
	"github.com/rmera/boo/utils"

	"stocksage/internal/domain"
	"stocksage/internal/stats"
)

// Direction classifier: gradient-boosted trees estimating the probability
// that the closing price is higher in horizon days. Trained fresh on the
// supplied history every call; nothing is persisted.

type Options struct {
	Rounds       int
	LearningRate float64
	MaxDepth     int
}

func DefaultOptions() Options {
	return Options{
		Rounds:       40,
		LearningRate: 0.08,
		MaxDepth:     4,
	}
}

const minTrainingRows = 40

var featureNames = []string{
	"ret_1d", "ret_2d", "ret_3d", "ret_5d",
	"ma7_ratio", "ma30_ratio", "vol_10d",
}

// maxLookback is the oldest observation a feature row reaches back to.
const maxLookback = 30

// ProbUp trains on the series and returns the probability that the close is
// higher horizon days after the last observation.
func ProbUp(series domain.HistoricalSeries, horizon int, opts Options) (float64, error) {
	if horizon <= 0 {
		return 0, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	closes := series.Closes()
	samples, labels, err := trainingSet(closes, horizon)
	if err != nil {
		return 0, err
	}

	if opts.Rounds <= 0 {
		opts.Rounds = DefaultOptions().Rounds
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultOptions().LearningRate
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultOptions().MaxDepth
	}

	o := boo.DefaultXOptions()
	o.Rounds = opts.Rounds
	o.LearningRate = opts.LearningRate
	o.MaxDepth = opts.MaxDepth
	o.Verbose = false
	o.EarlyStop = 0

	model := boo.NewMultiClass(&utils.DataBunch{
		Data:   samples,
		Labels: labels,
		Keys:   featureNames,
	}, o)
	if model == nil {
		return 0, errors.New("failed to train direction model")
	}

	latest, ok := featureRow(closes, len(closes)-1)
	if !ok {
		return 0, errors.New("not enough history for a feature row")
	}
	probs := model.PredictSingle(latest)
	for i, label := range model.ClassLabels() {
		if label == 1 {
			return clamp01(probs[i]), nil
		}
	}
	return 0.5, nil
}

// trainingSet builds one row per day that has both a full lookback window and
// a label horizon days ahead.
func trainingSet(closes []float64, horizon int) ([][]float64, []int, error) {
	var samples [][]float64
	var labels []int
	classes := map[int]struct{}{}
	for i := maxLookback; i+horizon < len(closes); i++ {
		row, ok := featureRow(closes, i)
		if !ok {
			continue
		}
		label := 0
		if closes[i+horizon] > closes[i] {
			label = 1
		}
		samples = append(samples, row)
		labels = append(labels, label)
		classes[label] = struct{}{}
	}
	if len(samples) < minTrainingRows {
		return nil, nil, fmt.Errorf("insufficient training rows: have %d, need %d", len(samples), minTrainingRows)
	}
	if len(classes) < 2 {
		return nil, nil, errors.New("history contains only one direction class")
	}
	return samples, labels, nil
}

func featureRow(closes []float64, i int) ([]float64, bool) {
	if i < maxLookback || closes[i] == 0 {
		return nil, false
	}
	window := closes[:i+1]
	ma7 := stats.SMA(window, 7)
	ma30 := stats.SMA(window, 30)
	if ma7 == 0 || ma30 == 0 {
		return nil, false
	}
	_, vol10 := stats.MeanStd(stats.Returns(window[len(window)-11:]))

	row := []float64{
		pctChange(closes, i, 1),
		pctChange(closes, i, 2),
		pctChange(closes, i, 3),
		pctChange(closes, i, 5),
		closes[i]/ma7 - 1,
		closes[i]/ma30 - 1,
		vol10,
	}
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
	}
	return row, true
}

func pctChange(closes []float64, i, lag int) float64 {
	if i-lag < 0 || closes[i-lag] == 0 {
		return 0
	}
	return closes[i]/closes[i-lag] - 1
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
