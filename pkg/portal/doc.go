// Package portal is a client for the AI Verify portal backend.
//
// It contains:
//   - [Client] with auth, custom headers, request ids and [APIError] normalization
//   - plugin catalog calls: list, get, upload, delete and dependency checks
//   - GraphQL mutations that create and update model API records
//
// Every call takes a context and makes exactly one attempt; retrying is left
// to the caller.
package portal
