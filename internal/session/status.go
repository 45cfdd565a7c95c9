package session

import "fmt"

// StatusKind classifies a Status for rendering.
type StatusKind string

const (
	StatusNone    StatusKind = ""
	StatusSuccess StatusKind = "success"
	StatusInfo    StatusKind = "info"
	StatusError   StatusKind = "error"
)

// Status is the user-facing outcome of a Session operation.
type Status struct {
	Kind    StatusKind
	Message string
}

func (s Status) String() string {
	if s.Kind == StatusNone {
		return s.Message
	}
	return fmt.Sprintf("%s: %s", s.Kind, s.Message)
}

func success(msg string) Status { return Status{Kind: StatusSuccess, Message: msg} }
func info(msg string) Status    { return Status{Kind: StatusInfo, Message: msg} }
func failure(msg string) Status { return Status{Kind: StatusError, Message: msg} }

const (
	msgAuthenticated   = "Authentication successful!"
	msgWelcome         = "Welcome! Create your first clipboard."
	msgAccountNotFound = "Account not found. Please check your username or create an account."
	msgBadEmailLogin   = "Incorrect email or password. Please try again."
	msgBadPassword     = "Incorrect password. Please try again."
	msgAccessFailed    = "We encountered an issue accessing your clipboard. Please try again."
	msgPasswordNeeded  = "Please re-enter your password to decrypt your clipboard."
	msgSignInFirst     = "Please sign in first."
	msgSignedOut       = "You have been signed out."

	msgUsernameTaken = "This username is already taken. Please choose another one."
	msgEmailTaken    = "This email is already registered. Please sign in instead."
	msgSignupFailed  = "Unable to create your account. Please try again."

	msgLoaded        = "Clipboard loaded successfully!"
	msgLoadFailed    = "Failed to load clipboard. Please try again."
	msgNoClipboard   = "No clipboard found"
	msgUndecryptable = "Unable to decrypt clipboard data"
	msgRefreshed     = "Clipboard refreshed successfully!"
	msgNoData        = "No clipboard data found."
	msgRefreshFailed = "Unable to refresh your clipboard. Please try again."
	msgNewClipboard  = "New clipboard created! Save to keep your changes."
	msgListFailed    = "Unable to list your clipboards. Please try again."

	msgSaved        = "Clipboard saved successfully!"
	msgQuota        = "You've reached the maximum limit of 2 clipboards."
	msgSaveFailed   = "Unable to save your clipboard. Please try again."
	msgSaveMissing  = "This clipboard no longer exists. Create a new one to save your changes."
	msgSaveUnloaded = "Your clipboard has not been loaded yet. Refresh it or start a new one before saving."

	msgMaxSections = "A clipboard holds at most %d sections."
	msgMinSections = "A clipboard needs at least one section."
	msgNoSection   = "There is no section %d."
)
