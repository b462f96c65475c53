// Package auth holds the credential hashing primitive, the signed browser
// cookie token, and token-secret management.
//
// Password hashes are a single unsalted SHA-256 pass stored as hex. That is
// the storage format this application is committed to (the seeded accounts
// depend on it); it is not an endorsement of unsalted hashes in general.
package auth
