// Package github publishes generated artifacts to a GitHub repository.
//
// # Overview
//
// [ContentClient] talks to the GitHub contents API:
//
//   - [ContentClient.FetchFile]: read a file (base64-decoded)
//   - [ContentClient.ListContents]: list a directory
//   - [ContentClient.UpsertFile]: create or update a file in one call
//
// UpsertFile is the publish primitive: it fetches the current blob SHA if
// the file exists and issues the matching create or update request, with a
// timestamped commit message. Binary artifacts (PNG) pass through unchanged
// since the API carries content base64-encoded either way.
//
// # Authentication
//
// A personal access token with the repo scope is required for writes.
// Reads of public repositories work without one, at lower rate limits.
package github
