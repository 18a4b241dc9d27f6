package forecast

import (
	"math"
	"testing"

	"stocksage/internal/domain"
)

func TestSummarizeTwoModels(t *testing.T) {
	ens := &domain.EnsembleForecast{
		Values:     []float64{102, 104, 106},
		Lower:      []float64{100, 101, 102},
		Upper:      []float64{104, 107, 110},
		ModelsUsed: []string{domain.ModelARIMA, domain.ModelSmoothing},
		Weights:    []float64{4.0 / 7.0, 3.0 / 7.0},
	}
	s := Summarize(ens, 100)

	if s.Failed {
		t.Fatal("Failed should be false")
	}
	if s.Confidence != "Medium" {
		t.Errorf("Confidence = %q, want Medium", s.Confidence)
	}
	if s.NextDay.Prediction != 102 || s.DayN.Prediction != 106 {
		t.Errorf("predictions = %f / %f", s.NextDay.Prediction, s.DayN.Prediction)
	}
	if s.NextDay.ReturnLabel != "+2.00%" {
		t.Errorf("NextDay.ReturnLabel = %q", s.NextDay.ReturnLabel)
	}
	if s.DayN.ReturnLabel != "+6.00%" {
		t.Errorf("DayN.ReturnLabel = %q", s.DayN.ReturnLabel)
	}
	if s.NextDay.RangeLabel != "$100.00 - $104.00" {
		t.Errorf("NextDay.RangeLabel = %q", s.NextDay.RangeLabel)
	}
}

func TestSummarizeSingleModelIsLowConfidence(t *testing.T) {
	ens := &domain.EnsembleForecast{
		Values:     []float64{98},
		Lower:      []float64{95},
		Upper:      []float64{101},
		ModelsUsed: []string{domain.ModelARIMA},
		Weights:    []float64{1},
	}
	s := Summarize(ens, 100)
	if s.Confidence != "Low" {
		t.Errorf("Confidence = %q, want Low", s.Confidence)
	}
	if s.NextDay.ReturnLabel != "-2.00%" {
		t.Errorf("ReturnLabel = %q", s.NextDay.ReturnLabel)
	}
}

func TestSummarizeFallbackOnTotalFailure(t *testing.T) {
	s := Summarize(nil, 123.456)
	if !s.Failed {
		t.Fatal("Failed should be true")
	}
	for _, p := range []domain.PointSummary{s.NextDay, s.DayN} {
		if p.Prediction != 123.456 || p.Lower != 123.456 || p.Upper != 123.456 {
			t.Errorf("fallback point = %+v, want current price everywhere", p)
		}
		if p.ReturnLabel != "+0.00%" {
			t.Errorf("ReturnLabel = %q, want +0.00%%", p.ReturnLabel)
		}
		if p.RangeLabel != "$123.46 - $123.46" {
			t.Errorf("RangeLabel = %q", p.RangeLabel)
		}
	}
	if len(s.ModelsUsed) != 0 {
		t.Errorf("ModelsUsed = %v, want empty", s.ModelsUsed)
	}
	if s.Confidence != "Low" {
		t.Errorf("Confidence = %q, want Low", s.Confidence)
	}
}

func TestExpectedReturnRoundTrip(t *testing.T) {
	cases := []struct {
		current, prediction float64
	}{
		{100, 110},
		{250.5, 248.2},
		{3.17, 3.17},
	}
	for _, tc := range cases {
		ens := &domain.EnsembleForecast{
			Values:     []float64{tc.prediction},
			Lower:      []float64{tc.prediction},
			Upper:      []float64{tc.prediction},
			ModelsUsed: []string{domain.ModelARIMA},
			Weights:    []float64{1},
		}
		s := Summarize(ens, tc.current)
		back := tc.current * (1 + s.NextDay.ExpectedReturnPct/100)
		if math.Abs(back-tc.prediction) > 1e-9 {
			t.Errorf("current %f prediction %f: round trip gives %f", tc.current, tc.prediction, back)
		}
	}
}
