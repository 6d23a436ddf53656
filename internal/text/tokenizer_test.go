package text

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Not an issue, phone is working", []string{"not", "an", "issue", "phone", "is", "working"}},
		{"I love it! A+ 10/10", []string{"love", "it", "10", "10"}},
		{"snake_case and Café", []string{"snake_case", "and", "café"}},
		{"a b c", nil},
	}

	for _, tt := range tests {
		got := Tokenize(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNGrams(t *testing.T) {
	tokens := []string{"phone", "is", "not", "working"}

	bi := NGrams(tokens, 1, 2)
	want := []string{"phone", "is", "not", "working", "phone is", "is not", "not working"}
	if !reflect.DeepEqual(bi, want) {
		t.Errorf("NGrams(1,2) = %v, want %v", bi, want)
	}

	onlyBi := NGrams(tokens, 2, 2)
	if len(onlyBi) != 3 || onlyBi[0] != "phone is" {
		t.Errorf("NGrams(2,2) = %v", onlyBi)
	}

	uni := NGrams(tokens, 1, 1)
	if !reflect.DeepEqual(uni, tokens) {
		t.Errorf("NGrams(1,1) = %v, want %v", uni, tokens)
	}

	if got := NGrams([]string{"one"}, 2, 3); len(got) != 0 {
		t.Errorf("Expected no bigrams from one token, got %v", got)
	}
}
