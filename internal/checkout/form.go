package checkout

import (
	"regexp"
	"strings"
)

// Form field names. JSON tags mirror the storefront form field names.
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldAddress    = "address"
	FieldCity       = "city"
	FieldPostalCode = "postalCode"
	FieldCardNumber = "cardNumber"
	FieldCardExpiry = "cardExpiry"
	FieldCardCVV    = "cardCVV"
)

type Form struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	CardNumber string `json:"cardNumber"`
	CardExpiry string `json:"cardExpiry"`
	CardCVV    string `json:"cardCVV"`
}

// Errors maps field name to a human-readable message. A field absent from
// the map is valid; an empty map means the form is valid.
type Errors map[string]string

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern      = regexp.MustCompile(`^\d{10,}$`)
	cardNumberPattern = regexp.MustCompile(`^\d{13,19}$`)
	cardExpiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cardCVVPattern    = regexp.MustCompile(`^\d{3,4}$`)

	nonDigits  = regexp.MustCompile(`\D`)
	cardGroups = regexp.MustCompile(`\d{4}`)
)

// Validate applies the full rule set and returns one message per failing
// field. It has no side effects; re-validation happens only on submit.
func Validate(f Form) Errors {
	errs := Errors{}

	if strings.TrimSpace(f.FirstName) == "" {
		errs[FieldFirstName] = "First name is required"
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs[FieldLastName] = "Last name is required"
	}
	if !emailPattern.MatchString(f.Email) {
		errs[FieldEmail] = "Valid email is required"
	}
	if !phonePattern.MatchString(f.Phone) {
		errs[FieldPhone] = "Valid phone number is required"
	}
	if strings.TrimSpace(f.Address) == "" {
		errs[FieldAddress] = "Address is required"
	}
	if strings.TrimSpace(f.City) == "" {
		errs[FieldCity] = "City is required"
	}
	if strings.TrimSpace(f.PostalCode) == "" {
		errs[FieldPostalCode] = "Postal code is required"
	}
	if !cardNumberPattern.MatchString(strings.ReplaceAll(f.CardNumber, " ", "")) {
		errs[FieldCardNumber] = "Valid card number is required"
	}
	if !cardExpiryPattern.MatchString(f.CardExpiry) {
		errs[FieldCardExpiry] = "Use MM/YY format"
	}
	if !cardCVVPattern.MatchString(f.CardCVV) {
		errs[FieldCardCVV] = "Valid CVV is required"
	}

	return errs
}

// FormatCardNumber strips spaces and appends a space after every run of
// four digits. Non-digit input is left where it stands, so only digit
// groups get regrouped. Applied on every keystroke.
func FormatCardNumber(raw string) string {
	stripped := strings.ReplaceAll(raw, " ", "")
	return strings.TrimSpace(cardGroups.ReplaceAllString(stripped, "${0} "))
}

// FormatExpiry strips non-digits, truncates to four digits, and inserts
// the slash after the second digit once at least two digits are present.
func FormatExpiry(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) >= 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}
