package common

const (
	// MaxClipboardsPerAccount is the number of clipboards an account may
	// create through the save path.
	MaxClipboardsPerAccount = 2

	// MaxSections is the upper bound of text sections in one clipboard.
	MaxSections = 4
)
