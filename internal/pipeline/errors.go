package pipeline

import "fmt"

// MissingInputError is a failed precondition: a file the run needs is not
// there. Nothing has been written when it is returned.
type MissingInputError struct {
	What string
	Path string
	Hint string
}

func (e *MissingInputError) Error() string {
	msg := fmt.Sprintf("%s not found at %s", e.What, e.Path)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func requireFile(what, path, hint string) error {
	if !fileExists(path) {
		return &MissingInputError{What: what, Path: path, Hint: hint}
	}
	return nil
}
