package model

// Review is a single labelled product review
type Review struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"` // Star rating, 1-5
	Label  int    `json:"label"`  // 1 = positively rated, 0 = poorly rated
}

// Positive reports whether the review carries the positive label
func (r Review) Positive() bool {
	return r.Label == 1
}

// DatasetStats records what happened to the rows on the way from CSV to labelled reviews
type DatasetStats struct {
	Source         string  `json:"source"`
	RowsRead       int     `json:"rows_read"`
	RowsSampled    int     `json:"rows_sampled"`
	DroppedMissing int     `json:"dropped_missing"`
	DroppedInvalid int     `json:"dropped_invalid_rating"`
	DroppedNeutral int     `json:"dropped_neutral"`
	Reviews        int     `json:"reviews"`
	Positive       int     `json:"positive"`
	Negative       int     `json:"negative"`
	PositiveRate   float64 `json:"positive_rate"`
	TrainSize      int     `json:"train_size"`
	TestSize       int     `json:"test_size"`
	FirstTrainText string  `json:"first_train_text,omitempty"`
}
