// Package errors provides structured, actionable errors for the command
// line: a registered code, a category, an optional file position and a hint.
//
// Validation failures of the form itself are not errors; they are messages
// in addressform.ErrorMap. This package covers what stops a command from
// running: a broken config file, an unreadable values file, a sink that
// cannot be created.
//
// # Usage
//
//	err := errors.New(errors.CodeConfigSyntax).
//	    WithOffset("addressform.json", data, syntaxErr.Offset).
//	    Wrap(syntaxErr)
//
//	errors.Fprint(os.Stderr, err)
//	// Output:
//	// ERROR E101: Invalid config syntax
//	//
//	//   addressform.json:3:14
//	//
//	//       2 │   "port": 8080,
//	//   →   3 │   "logLevel": info
//	//         │              ^
//	//
//	//   The configuration file is not valid JSON.
package errors
