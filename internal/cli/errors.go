package cli

import (
	"fmt"
	"os"

	lcerrors "github.com/randalmurphal/layerconf/internal/errors"
)

// PrintError prints an error to stderr with appropriate formatting.
// Structured errors use the user-friendly format; anything else prints as a
// simple error message.
func PrintError(err error) {
	if lcErr := lcerrors.AsError(err); lcErr != nil {
		fmt.Fprintln(os.Stderr, lcErr.UserMessage())
		if verbose {
			fmt.Fprintf(os.Stderr, "\nCode: %s\n", lcErr.Code)
			if lcErr.Cause != nil {
				fmt.Fprintf(os.Stderr, "Cause: %v\n", lcErr.Cause)
			}
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
