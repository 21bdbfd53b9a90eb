// Package runtime provides the execution context for bro commands.
//
// It encapsulates shared dependencies needed by actions, such as the
// repository handle, user configuration, logger and pull-request client.
package runtime
