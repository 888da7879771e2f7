// Package bring is a client for the Bring shopping-list REST API.
//
// The daemon treats the remote list as the single source of truth: items
// are read from and written to one configured list, and "removing" an item
// relocates it to the recently-purchased bucket rather than deleting it
// (that is the only removal the API offers).
package bring
