// Package host models the capabilities the embedding chat platform hands
// to the mini-app: the authenticated user identity and native dialogs.
package host

// User is the identity resolved by the host platform at startup. It is
// fully trusted; the engine performs no verification of its own.
type User struct {
	ID        int64
	FirstName string
}

// Capabilities is the surface the engine consumes from the host platform.
type Capabilities interface {
	// Ready signals that the mini-app finished bootstrapping.
	Ready()
	// Expand asks the host to give the mini-app the full viewport.
	Expand()
	// CurrentUser returns the authenticated user, if the host provided one.
	CurrentUser() (User, bool)
	// Alert shows a dismissable notification.
	Alert(message string)
	// Confirm shows a yes/no dialog and reports the choice.
	Confirm(message string) bool
	// Prompt asks for a line of text; ok is false when the user dismissed
	// the dialog without input.
	Prompt(message string) (value string, ok bool)
}
