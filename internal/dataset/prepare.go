package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/ppiankov/polarity/internal/model"
)

// PrepareOptions controls sampling, cleaning and labelling
type PrepareOptions struct {
	SampleFraction float64
	SampleSeed     int64
	DropIncomplete bool // Any empty field drops the row, not only text/rating
	NeutralRating  int  // Rows with this rating are removed; 0 keeps all
	PositiveAbove  int  // Ratings above this are labelled positive
	StripHTML      bool
}

// OptionsFromConfig converts the dataset section of the config
func OptionsFromConfig(cfg model.DatasetConfig) (LoadOptions, PrepareOptions) {
	delim := ','
	if r := []rune(cfg.Delimiter); len(r) == 1 {
		delim = r[0]
	}

	return LoadOptions{
			TextColumn:   cfg.TextColumn,
			RatingColumn: cfg.RatingColumn,
			Delimiter:    delim,
		}, PrepareOptions{
			SampleFraction: cfg.SampleFraction,
			SampleSeed:     cfg.SampleSeed,
			DropIncomplete: cfg.DropIncomplete,
			NeutralRating:  cfg.NeutralRating,
			PositiveAbove:  cfg.PositiveAbove,
			StripHTML:      cfg.StripHTML,
		}
}

// Sample returns round(fraction*n) rows picked by a seeded permutation, in permutation order.
// A fraction of 1 or more returns every row in its original order.
func Sample(rows [][]string, fraction float64, seed int64) ([][]string, error) {
	if fraction <= 0 {
		return nil, fmt.Errorf("sample fraction must be > 0, got %v", fraction)
	}
	if fraction >= 1 {
		return rows, nil
	}

	n := int(math.RoundToEven(fraction * float64(len(rows))))
	perm := rand.New(rand.NewSource(seed)).Perm(len(rows))

	sampled := make([][]string, n)
	for i := 0; i < n; i++ {
		sampled[i] = rows[perm[i]]
	}
	return sampled, nil
}

// Prepare samples the table, drops unusable rows and derives labels from ratings
func Prepare(table *Table, opts PrepareOptions) ([]model.Review, model.DatasetStats, error) {
	stats := model.DatasetStats{RowsRead: table.Len()}

	rows, err := Sample(table.Rows, opts.SampleFraction, opts.SampleSeed)
	if err != nil {
		return nil, stats, err
	}
	stats.RowsSampled = len(rows)

	reviews := make([]model.Review, 0, len(rows))
	for _, row := range rows {
		if table.missing(row, opts.DropIncomplete) {
			stats.DroppedMissing++
			continue
		}

		rating, ok := parseRating(row[table.RatingIdx])
		if !ok {
			stats.DroppedInvalid++
			continue
		}

		if opts.NeutralRating != 0 && rating == opts.NeutralRating {
			stats.DroppedNeutral++
			continue
		}

		// Rows whose text cleans down to nothing are kept; they still carry a label
		text := row[table.TextIdx]
		if opts.StripHTML {
			text = CleanText(text)
		}

		label := 0
		if rating > opts.PositiveAbove {
			label = 1
		}

		review := model.Review{
			Text:   text,
			Rating: rating,
			Label:  label,
		}
		reviews = append(reviews, review)
		if review.Positive() {
			stats.Positive++
		} else {
			stats.Negative++
		}
	}

	stats.Reviews = len(reviews)
	if stats.Reviews == 0 {
		return nil, stats, ErrEmptyDataset
	}
	stats.PositiveRate = float64(stats.Positive) / float64(stats.Reviews)

	return reviews, stats, nil
}

// naValues are the field values read as missing, matched exactly as written
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw CSV field counts as a missing value
func IsMissing(field string) bool {
	_, ok := naValues[field]
	return ok
}

// missing reports whether the row has a missing required value; anyField checks every column
func (t *Table) missing(row []string, anyField bool) bool {
	if anyField {
		if len(row) < len(t.Header) {
			return true
		}
		for _, field := range row {
			if IsMissing(field) {
				return true
			}
		}
		return false
	}

	for _, idx := range []int{t.TextIdx, t.RatingIdx} {
		if idx >= len(row) || IsMissing(row[idx]) {
			return true
		}
	}
	return false
}

// parseRating accepts integral star ratings 1-5 written as "4" or "4.0"
func parseRating(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	if f < 1 || f > 5 {
		return 0, false
	}
	return int(f), true
}
