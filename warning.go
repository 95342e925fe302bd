package mrcfile

import "github.com/charmbracelet/log"

// WarningCode classifies recoverable-warning signals.
type WarningCode uint8

const (
	// WarnMapID signals an incorrect map ID magic string.
	WarnMapID WarningCode = iota + 1
	// WarnMachineStamp signals an unrecognizable machine stamp.
	WarnMachineStamp
	// WarnMode signals an unrecognized data mode.
	WarnMode
	// WarnFormatVersion signals a file that does not declare the expected
	// format version.
	WarnFormatVersion
	// WarnPermissiveOpen signals a structural problem tolerated during a
	// permissive open.
	WarnPermissiveOpen
)

// Warning is a recoverable-warning signal. Conditions with a safety impact
// (magic string, machine stamp, mode, format version) raise one Warning in
// addition to their printed validation line, so embedding code can observe
// them even when diagnostic output is redirected or discarded.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string { return w.Message }

// logWarning is the default warning sink.
func logWarning(w Warning) {
	log.Warn(w.Message)
}

func (f *File) warnf(code WarningCode, message string) {
	if f.warn != nil {
		f.warn(Warning{Code: code, Message: message})
	}
}
