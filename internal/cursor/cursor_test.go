package cursor

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	id := uuid.New()
	cases := []string{
		"2026-03-01T12:00:00Z",
		"87.5",
		"value|with|pipes",
	}

	for _, sortValue := range cases {
		token := Encode(sortValue, id)

		cur, err := Decode(token)
		if err != nil {
			t.Fatalf("Decode(%q) error = %v", sortValue, err)
		}
		if cur.SortValue != sortValue {
			t.Errorf("SortValue = %q, want %q", cur.SortValue, sortValue)
		}
		if cur.ID != id {
			t.Errorf("ID = %v, want %v", cur.ID, id)
		}
	}
}

func TestDecodeSameTokenTwice(t *testing.T) {
	token := Encode("2026-03-01T12:00:00Z", uuid.New())

	first, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	second, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if first != second {
		t.Errorf("repeated decode differs: %v vs %v", first, second)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"no separator", Encode("", uuid.New())[0:4]},
		{"bad uuid", "MjAyNnxub3QtYS11dWlk"}, // base64("2026|not-a-uuid")
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.token); !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformed", tc.token, err)
			}
		})
	}
}

func TestDecodeEmptySortValue(t *testing.T) {
	token := Encode("", uuid.New())
	if _, err := Decode(token); !errors.Is(err, ErrMalformed) {
		t.Errorf("Decode() error = %v, want ErrMalformed", err)
	}
}
