/*package errs contains the error kinds reported by augustus. Errors returned
by Collection and Snapshot wrap one of these values and can be checked with
errors.Is.
*/
package errs

import (
	"errors"
)

var (
	// Configuration is a missing or malformed configuration value or
	// configuration file.
	Configuration = errors.New("Configuration error")
	// Load is a simulation or catalogue file which does not exist or which
	// its reader rejected.
	Load = errors.New("Load error")
	// State is an operation called before the operations it depends on have
	// succeeded.
	State = errors.New("State error")
	// Validation is malformed caller input.
	Validation = errors.New("Validation error")
)
