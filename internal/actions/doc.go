// Package actions provides the business logic behind bro commands.
//
// Each action corresponds to a command (pickup, putout, pull-request make,
// etc.) and orchestrates operations across the git and hub packages.
//
// Key patterns:
//   - Actions accept runtime.Context which provides the Repository, Config and Splog
//   - Compound workflows abort on the first failed step and report it as a StepError
//   - Actions never format errors; the command-line boundary does
package actions
