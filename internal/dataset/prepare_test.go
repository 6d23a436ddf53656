package dataset

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func loadPhones(t *testing.T) *Table {
	t.Helper()
	table, err := Load(strings.NewReader(phonesCSV), LoadOptions{TextColumn: "Reviews", RatingColumn: "Rating"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return table
}

func defaultPrepare() PrepareOptions {
	return PrepareOptions{
		SampleFraction: 1,
		DropIncomplete: true,
		NeutralRating:  3,
		PositiveAbove:  3,
		StripHTML:      false,
	}
}

func TestPrepare_DropsAndLabels(t *testing.T) {
	reviews, stats, err := Prepare(loadPhones(t), defaultPrepare())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Row 3 has an empty brand, row 4 is neutral
	if stats.DroppedMissing != 1 {
		t.Errorf("Expected 1 row dropped for missing values, got %d", stats.DroppedMissing)
	}
	if stats.DroppedNeutral != 1 {
		t.Errorf("Expected 1 neutral row dropped, got %d", stats.DroppedNeutral)
	}
	if len(reviews) != 3 {
		t.Fatalf("Expected 3 reviews, got %d", len(reviews))
	}

	wantLabels := []int{1, 0, 0}
	for i, r := range reviews {
		if r.Label != wantLabels[i] {
			t.Errorf("Review %d (%q, rating %d): expected label %d, got %d", i, r.Text, r.Rating, wantLabels[i], r.Label)
		}
	}

	if stats.Positive != 1 || stats.Negative != 2 {
		t.Errorf("Expected 1 positive and 2 negative, got %d and %d", stats.Positive, stats.Negative)
	}
	if stats.PositiveRate < 0.33 || stats.PositiveRate > 0.34 {
		t.Errorf("Expected positive rate ~0.333, got %f", stats.PositiveRate)
	}
}

func TestPrepare_OnlyRequiredColumns(t *testing.T) {
	opts := defaultPrepare()
	opts.DropIncomplete = false

	reviews, stats, err := Prepare(loadPhones(t), opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.DroppedMissing != 0 {
		t.Errorf("Expected no missing drops, got %d", stats.DroppedMissing)
	}
	if len(reviews) != 4 {
		t.Errorf("Expected 4 reviews, got %d", len(reviews))
	}
}

func TestPrepare_InvalidRatings(t *testing.T) {
	data := "Rating,Reviews\n5,good\nfive,bad\n4.5,meh\n9,odd\n1.0,awful\n"
	table, err := Load(strings.NewReader(data), LoadOptions{TextColumn: "Reviews", RatingColumn: "Rating"})
	if err != nil {
		t.Fatal(err)
	}

	reviews, stats, err := Prepare(table, defaultPrepare())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.DroppedInvalid != 3 {
		t.Errorf("Expected 3 invalid ratings, got %d", stats.DroppedInvalid)
	}
	if len(reviews) != 2 || reviews[1].Rating != 1 {
		t.Errorf("Expected ratings 5 and 1 to survive, got %+v", reviews)
	}
}

func TestPrepare_Empty(t *testing.T) {
	data := "Rating,Reviews\n3,neutral\n3,also neutral\n"
	table, err := Load(strings.NewReader(data), LoadOptions{TextColumn: "Reviews", RatingColumn: "Rating"})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = Prepare(table, defaultPrepare())
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Expected ErrEmptyDataset, got %v", err)
	}
}

func TestPrepare_RawTextByDefault(t *testing.T) {
	data := "Rating,Reviews\n5,\"x<y and the phone is fine\"\n1,<br>\n"
	table, err := Load(strings.NewReader(data), LoadOptions{TextColumn: "Reviews", RatingColumn: "Rating"})
	if err != nil {
		t.Fatal(err)
	}

	reviews, stats, err := Prepare(table, defaultPrepare())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.DroppedMissing != 0 || len(reviews) != 2 {
		t.Fatalf("Expected both rows kept, got %d reviews and %d missing", len(reviews), stats.DroppedMissing)
	}
	if reviews[0].Text != "x<y and the phone is fine" || reviews[1].Text != "<br>" {
		t.Errorf("Expected raw text, got %q and %q", reviews[0].Text, reviews[1].Text)
	}

	opts := defaultPrepare()
	opts.StripHTML = true
	reviews, stats, err = Prepare(table, opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.DroppedMissing != 0 || len(reviews) != 2 {
		t.Fatalf("Expected rows kept after stripping, got %d reviews and %d missing", len(reviews), stats.DroppedMissing)
	}
	if reviews[0].Text != "x<y and the phone is fine" || reviews[1].Text != "" {
		t.Errorf("Expected cleaned text, got %q and %q", reviews[0].Text, reviews[1].Text)
	}
}

func TestPrepare_MissingValueTokens(t *testing.T) {
	data := "Brand,Rating,Reviews\nAcme,5,good\nN/A,4,fine\nAcme,NaN,odd\nnull,1,bad\nAcme,2,NA\nNone,1,awful\nAcme,1,na is not missing\n"
	table, err := Load(strings.NewReader(data), LoadOptions{TextColumn: "Reviews", RatingColumn: "Rating"})
	if err != nil {
		t.Fatal(err)
	}

	reviews, stats, err := Prepare(table, defaultPrepare())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.DroppedMissing != 5 {
		t.Errorf("Expected 5 rows with missing values, got %d", stats.DroppedMissing)
	}
	if len(reviews) != 2 {
		t.Fatalf("Expected 2 reviews, got %+v", reviews)
	}

	opts := defaultPrepare()
	opts.DropIncomplete = false
	reviews, stats, err = Prepare(table, opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// Only the NaN rating and NA text count when other columns are ignored
	if stats.DroppedMissing != 2 || len(reviews) != 5 {
		t.Errorf("Expected 2 missing and 5 reviews, got %d and %d", stats.DroppedMissing, len(reviews))
	}
	if stats.Positive != 2 || stats.Negative != 3 {
		t.Errorf("Expected 2 positive and 3 negative, got %d and %d", stats.Positive, stats.Negative)
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "<NA>", "#N/A"} {
		if !IsMissing(v) {
			t.Errorf("Expected %q to be missing", v)
		}
	}
	for _, v := range []string{" ", "na", "none", "0", "Nan"} {
		if IsMissing(v) {
			t.Errorf("Expected %q not to be missing", v)
		}
	}
}

func TestSample(t *testing.T) {
	rows := make([][]string, 100)
	for i := range rows {
		rows[i] = []string{fmt.Sprint(i)}
	}

	sampled, err := Sample(rows, 0.1, 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(sampled) != 10 {
		t.Fatalf("Expected 10 rows, got %d", len(sampled))
	}

	again, _ := Sample(rows, 0.1, 10)
	for i := range sampled {
		if sampled[i][0] != again[i][0] {
			t.Fatalf("Expected identical samples for identical seeds, differ at %d", i)
		}
	}

	seen := make(map[string]bool)
	for _, r := range sampled {
		if seen[r[0]] {
			t.Errorf("Row %s sampled twice", r[0])
		}
		seen[r[0]] = true
	}

	all, _ := Sample(rows, 1, 10)
	if len(all) != 100 || all[0][0] != "0" {
		t.Errorf("Expected full sample in original order")
	}

	if _, err := Sample(rows, 0, 10); err == nil {
		t.Error("Expected error for zero fraction")
	}
}
