// Package errors provides structured, actionable error messages for the
// taskboard CLI.
//
// Each error has a code that maps to a short message, a longer explanation
// and a category:
//   - config: configuration files and values (TB1xx)
//   - api: the remote task API (TB2xx)
//   - export: task snapshot export (TB3xx)
//   - server: the live server (TB4xx)
//
// # Usage
//
//	err := errors.New("TB102").
//	    WithLocation("taskboard.yaml", 4, 3).
//	    WithSuggestion("toast.duration must be a duration such as \"3s\"").
//	    Wrap(cause)
//
//	errors.PrintError(err)
//	// ERROR TB102: Invalid configuration file
//	//
//	//   taskboard.yaml:4:3
//	//
//	//       3 │ toast:
//	//   →   4 │   duration: soon
//	//         │   ^
//	//
//	//   Hint: toast.duration must be a duration such as "3s"
package errors
