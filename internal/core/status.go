package core

// StatusKind classifies the outcome of a form submission.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusOK
	StatusMissingField
	StatusUnauthenticated
	StatusRejected
	StatusInvalid
)

func (k StatusKind) String() string {
	switch k {
	case StatusOK:
		return "ok"
	case StatusMissingField:
		return "missing_field"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusRejected:
		return "rejected"
	case StatusInvalid:
		return "invalid"
	default:
		return "none"
	}
}

// Status is the user-facing result of a form submission. Message is shown
// verbatim in the page.
type Status struct {
	Kind    StatusKind
	Message string
}

// OK reports whether the submission was applied.
func (s Status) OK() bool { return s.Kind == StatusOK }

func Success(msg string) Status  { return Status{Kind: StatusOK, Message: msg} }
func Missing(msg string) Status  { return Status{Kind: StatusMissingField, Message: msg} }
func Rejected(msg string) Status { return Status{Kind: StatusRejected, Message: msg} }
func Invalid(msg string) Status  { return Status{Kind: StatusInvalid, Message: msg} }
func NotLoggedIn() Status        { return Status{Kind: StatusUnauthenticated, Message: MsgNotLoggedIn} }

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordTooLong reports whether bcrypt would refuse password.
func PasswordTooLong(password string) bool { return len(password) > MaxPasswordBytes }

// User-facing messages.
const (
	MsgNotLoggedIn = "User not logged in"

	MsgSelectDate       = "Please select a date"
	MsgEnterAmount      = "Please enter an amount"
	MsgSelectCategory   = "Please select a category"
	MsgInvalidDate      = "Please select a valid date"
	MsgInvalidAmount    = "Please enter a valid amount"
	MsgTransactionAdded = "Transaction added: %s, %s, %s"

	MsgEnterTotalBudget    = "Please enter a total budget"
	MsgInvalidTotalBudget  = "Please enter a valid total budget"
	MsgTotalBudgetUpdated  = "Total budget updated successfully!"
	MsgEnterBudgetAmount   = "Please enter a budget amount"
	MsgInvalidBudgetAmount = "Please enter a valid budget amount"
	MsgCategoryBudgetSaved = "Category budget updated successfully!"

	MsgFillAllFields      = "Please fill out all fields"
	MsgProfileUpdated     = "Profile updated successfully"
	MsgPasswordsMismatch  = "Passwords do not match"
	MsgPasswordUpdated    = "Password updated successfully"
	MsgEnterPassword      = "Please enter your password"
	MsgPasswordTooLong    = "Password must be at most 72 bytes"
	MsgInvalidPassword    = "Invalid password"
	MsgAccountDeleted     = "Account deleted successfully"
	MsgEmailTaken         = "An account with this email already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgSignedUp           = "Account created successfully"
	MsgSignedIn           = "Signed in successfully"
)
