// Package github resolves downloadable release assets through the GitHub
// releases API.
//
// A Client fetches release metadata (latest or by tag) and applies an
// AssetSelector to locate exactly one asset; zero or ambiguous matches are
// hard failures. There are no retries and no rate-limit handling.
package github
