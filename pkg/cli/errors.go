package cli

import (
	"errors"
	"fmt"
	"io"

	pkgerrors "github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// ReportError prints a failed command's error followed by the stack of the
// call that produced it, when the error carries one.
func ReportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)

	var st stackTracer
	if errors.As(err, &st) {
		fmt.Fprintf(w, "Origin:%+v\n", st.StackTrace())
	}
}
