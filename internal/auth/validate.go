package auth

import "regexp"

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	passwordRe = regexp.MustCompile(`^.{3,20}$`)
	emailRe    = regexp.MustCompile(`^[\S]+@[\S]+\.[\S]+$`)
)

// Messages shown for rejected signup fields.
const (
	ReasonUsername = "That's not a valid username."
	ReasonPassword = "That wasn't a valid password."
	ReasonVerify   = "Your passwords didn't match."
	ReasonEmail    = "That's not a valid email."
)

// ValidUsername reports whether name is 3–20 characters from [A-Za-z0-9_-].
func ValidUsername(name string) bool { return usernameRe.MatchString(name) }

// ValidPassword reports whether password is 3–20 characters long.
func ValidPassword(password string) bool { return passwordRe.MatchString(password) }

// ValidEmail accepts an empty address or something shaped like user@host.tld.
func ValidEmail(email string) bool { return email == "" || emailRe.MatchString(email) }

// ValidateSignup checks all registration fields and returns one
// ValidationError per rejected field, in form order. verify is the
// repeated password typed on the signup form.
func ValidateSignup(name, password, verify, email string) []*ValidationError {
	var errs []*ValidationError
	if !ValidUsername(name) {
		errs = append(errs, &ValidationError{Field: "username", Reason: ReasonUsername})
	}
	if !ValidPassword(password) {
		errs = append(errs, &ValidationError{Field: "password", Reason: ReasonPassword})
	} else if password != verify {
		errs = append(errs, &ValidationError{Field: "verify", Reason: ReasonVerify})
	}
	if !ValidEmail(email) {
		errs = append(errs, &ValidationError{Field: "email", Reason: ReasonEmail})
	}
	return errs
}
