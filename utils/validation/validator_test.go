package validation

import "testing"

func TestValidateStructPasses(t *testing.T) {
	type form struct {
		Email  string `validate:"required,email"`
		Gender string `validate:"omitempty,oneof=male female other"`
		Date   string `validate:"required,datetime=2006-01-02"`
	}
	v := NewValidator()
	if err := v.ValidateStruct(form{Email: "asha.verma@example.com", Gender: "female", Date: "2004-06-12"}); err != nil {
		t.Fatalf("valid struct rejected: %v", err)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	type form struct {
		Email  string `validate:"required,email"`
		Gender string `validate:"omitempty,oneof=male female other"`
		Date   string `validate:"required,datetime=2006-01-02"`
	}
	v := NewValidator()
	err := v.ValidateStruct(form{Email: "not-an-email", Gender: "unknown", Date: "12-06-2004"})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	fields := FormatValidationErrors(err)
	if fields["email"] != "Invalid email format" {
		t.Errorf("email message = %q", fields["email"])
	}
	if fields["gender"] != "Gender must be one of: male, female, other" {
		t.Errorf("gender message = %q", fields["gender"])
	}
	if fields["date"] != "Date must be a date in YYYY-MM-DD form" {
		t.Errorf("date message = %q", fields["date"])
	}
}

func TestFormatValidationErrorsRequired(t *testing.T) {
	type form struct {
		Name string `validate:"required"`
	}
	v := NewValidator()
	err := v.ValidateStruct(form{})
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	if got := FormatValidationErrors(err)["name"]; got != "Name is required" {
		t.Errorf("name message = %q", got)
	}
}
