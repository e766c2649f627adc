package schedule

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/academia/backend/core"
)

func TestInitValidators(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	type input struct {
		Day   string `json:"day" validate:"weekday"`
		Start string `json:"start_time" validate:"clock"`
	}

	tests := []struct {
		name    string
		in      input
		wantErr map[string]string
	}{
		{name: "valid", in: input{Day: "MONDAY", Start: "09:00"}},
		{name: "lowercase day", in: input{Day: "friday", Start: "09:00"}},
		{name: "padded day", in: input{Day: " Sunday ", Start: "09:00:30"}},
		{name: "unknown day", in: input{Day: "FUNDAY", Start: "09:00"}, wantErr: map[string]string{"day": "day must be a day of the week"}},
		{name: "bad clock", in: input{Day: "MONDAY", Start: "9am"}, wantErr: map[string]string{"start_time": "start_time must be a time in HH:MM format"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.in)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Struct() error = %v", err)
				}
				return
			}
			verrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Struct() error = %v, want validator.ValidationErrors", err)
			}
			got := core.TranslateErrors(verrs, translator)
			for fld, msg := range tt.wantErr {
				if got[fld] != msg {
					t.Errorf("TranslateErrors()[%q] = %q, want %q", fld, got[fld], msg)
				}
			}
		})
	}
}
