package auth

import (
	"strings"

	"github.com/jrsteele09/community-client/users"
)

// SignUpForm is what the registration form collects.
type SignUpForm struct {
	Email           string
	BahaiID         string
	Password        string
	ConfirmPassword string
}

// Validator checks forms before any network call is made. Failures are
// *FieldError.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSignIn validates login credentials
func (v *Validator) ValidateSignIn(email, password string) error {
	if blank(email) || password == "" {
		field := "email"
		if !blank(email) {
			field = "password"
		}
		return &FieldError{Field: field, Message: "Please enter both email and password."}
	}
	return v.ValidateEmail(email)
}

// ValidateSignUp validates the registration form
func (v *Validator) ValidateSignUp(form SignUpForm) error {
	for _, f := range []struct{ name, value string }{
		{"email", form.Email},
		{"bahaiId", form.BahaiID},
		{"password", form.Password},
		{"confirmPassword", form.ConfirmPassword},
	} {
		if blank(f.value) {
			return &FieldError{Field: f.name, Message: "Please fill all fields."}
		}
	}
	if err := v.ValidateEmail(form.Email); err != nil {
		return err
	}
	if form.Password != form.ConfirmPassword {
		return &FieldError{Field: "confirmPassword", Message: "Passwords do not match."}
	}
	return nil
}

// ValidateVerification validates the verification form. The Bahá'í ID and
// password are carried over from registration.
func (v *Validator) ValidateVerification(bahaiID, code, password string) error {
	if blank(code) {
		return &FieldError{Field: "verificationCode", Message: "Please enter your verification code."}
	}
	if blank(bahaiID) || password == "" {
		return &FieldError{Field: "bahaiId", Message: "Registration details are missing. Please register again."}
	}
	return nil
}

// ValidateEmail checks presence and basic address syntax
func (v *Validator) ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &FieldError{Field: "email", Message: "Please enter an email address."}
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") || strings.ContainsAny(email, " \t") {
		return &FieldError{Field: "email", Message: "Please enter a valid email address."}
	}
	return nil
}

// ValidateProfile checks a profile before it is sent to the backend
func (v *Validator) ValidateProfile(user *users.User) error {
	if user == nil || blank(user.ID) {
		return &FieldError{Field: "id", Message: "Profile has no user id."}
	}
	if blank(user.FirstName) || blank(user.LastName) {
		return &FieldError{Field: "name", Message: "Please enter your first and last name."}
	}
	if user.Email != "" {
		return v.ValidateEmail(user.Email)
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
