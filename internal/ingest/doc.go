// Package ingest turns an uploaded video into a library asset.
//
// An ingestion moves through fixed steps: the upload is staged privately,
// hashed, checked against the store and the video directory, committed under
// its content hash with a no-replace rename, given a preview, and finally
// recorded in the store. Outcomes are Created, DuplicateRejected or Failed.
//
// Two ingestions of identical bytes race on the commit, and, when their
// extensions differ, on the store's unique hash. The loser of either race
// removes what it wrote and reports DuplicateRejected. A Failed ingestion
// leaves no file behind, including after cancellation.
//
// Preview problems never fail an ingestion; the asset is then recorded
// without a preview.
package ingest
