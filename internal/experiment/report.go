package experiment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// TrainReport summarizes a training run. Accepted and Created count
// presentations across all epochs.
type TrainReport struct {
	Epochs          int           `json:"epochs"`
	Samples         int           `json:"samples"`
	Accepted        int           `json:"accepted"`
	Created         int           `json:"created"`
	VigilanceRaises int           `json:"vigilance_raises"`
	Clusters        int           `json:"clusters"`
	Elapsed         time.Duration `json:"elapsed"`
}

func (r TrainReport) String() string {
	return fmt.Sprintf("trained %s samples x %d epochs: %s clusters (%s accepted, %s created, %s vigilance raises) in %s",
		humanize.Comma(int64(r.Samples)), r.Epochs,
		humanize.Comma(int64(r.Clusters)),
		humanize.Comma(int64(r.Accepted)),
		humanize.Comma(int64(r.Created)),
		humanize.Comma(int64(r.VigilanceRaises)),
		r.Elapsed.Round(time.Millisecond))
}

// LabelScore is the per-label test tally.
type LabelScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// TestReport summarizes a test pass. Successes counts only this pass.
type TestReport struct {
	Samples   int                `json:"samples"`
	Successes int                `json:"successes"`
	PerLabel  map[int]LabelScore `json:"per_label"`
	Elapsed   time.Duration      `json:"elapsed"`
}

// Accuracy is Successes/Samples, or 0 for an empty pass.
func (r TestReport) Accuracy() float64 {
	if r.Samples == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Samples)
}

func (r TestReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tested %s samples: %s correct, accuracy %s%% in %s",
		humanize.Comma(int64(r.Samples)),
		humanize.Comma(int64(r.Successes)),
		humanize.FormatFloat("#.##", 100*r.Accuracy()),
		r.Elapsed.Round(time.Millisecond))

	labels := make([]int, 0, len(r.PerLabel))
	for l := range r.PerLabel {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	for _, l := range labels {
		s := r.PerLabel[l]
		fmt.Fprintf(&b, "\n  %d: %s / %s", l, humanize.Comma(int64(s.Correct)), humanize.Comma(int64(s.Total)))
	}
	return b.String()
}

// Report combines a full train and test run.
type Report struct {
	Train        TrainReport `json:"train"`
	Test         TestReport  `json:"test"`
	TrainSkipped int         `json:"train_skipped"`
	TestSkipped  int         `json:"test_skipped"`
}

func (r Report) String() string {
	return fmt.Sprintf("%s\n%s\nskipped %d training and %d test samples",
		r.Train, r.Test, r.TrainSkipped, r.TestSkipped)
}

// BaselineReport summarizes a one-prototype-per-label run.
type BaselineReport struct {
	Prototypes     int           `json:"prototypes"`
	Samples        int           `json:"samples"`
	Successes      int           `json:"successes"`
	MeanSimilarity float64       `json:"mean_similarity"`
	Elapsed        time.Duration `json:"elapsed"`
}

// Accuracy is Successes/Samples, or 0 for an empty pass.
func (r BaselineReport) Accuracy() float64 {
	if r.Samples == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Samples)
}

func (r BaselineReport) String() string {
	return fmt.Sprintf("baseline with %d prototypes: %s / %s correct, accuracy %s%%, mean similarity %.4f",
		r.Prototypes,
		humanize.Comma(int64(r.Successes)),
		humanize.Comma(int64(r.Samples)),
		humanize.FormatFloat("#.##", 100*r.Accuracy()),
		r.MeanSimilarity)
}
