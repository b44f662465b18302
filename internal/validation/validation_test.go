package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/shared"
	"github.com/go-playground/validator/v10"
)

func TestValidator(t *testing.T) {
	v := New()
	valid := models.Submission{
		Genre:      "Jazz",
		ArtistName: "Miles Davis",
		Title:      "So What",
		AlbumName:  "Kind of Blue",
		Price:      "0.99",
	}

	tests := []struct {
		name    string
		modify  func(s *models.Submission)
		wantErr string
	}{
		{"valid", func(s *models.Submission) {}, ""},
		{"empty genre uses default", func(s *models.Submission) { s.Genre = "" }, ""},
		{"empty album", func(s *models.Submission) { s.AlbumName = "" }, ""},
		{"price is opaque", func(s *models.Submission) { s.Price = "two bucks" }, ""},
		{"missing artist", func(s *models.Submission) { s.ArtistName = "" }, "artistName is required"},
		{"blank title", func(s *models.Submission) { s.Title = "   " }, "title is required"},
		{"long price", func(s *models.Submission) { s.Price = strings.Repeat("9", 33) }, "price must be at most 32"},
		{"genre with control characters", func(s *models.Submission) { s.Genre = "ja\tzz" }, "genre must not contain control characters"},
		{"unicode genre", func(s *models.Submission) { s.Genre = "Música Popular" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := valid
			tt.modify(&sub)

			err := v.Submission(sub)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}

			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error to contain %q, got %q", tt.wantErr, err.Error())
			}
		})
	}

	t.Run("reports every field", func(t *testing.T) {
		err := v.Submission(models.Submission{})
		if err == nil {
			t.Fatal("expected error")
		}
		for _, want := range []string{"artistName", "title"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("expected %q in %q", want, err.Error())
			}
		}
	})
}

func TestMustRegister(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an empty tag")
		}
	}()
	mustRegister(validator.New(), "", printable)
}
