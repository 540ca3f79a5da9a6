package constants

// ExtractStatus is the outcome of processing a single file.
type ExtractStatus string

const (
	StatusMatched  ExtractStatus = "MATCHED"   // identifier found
	StatusNotFound ExtractStatus = "NOT_FOUND" // text read, no identifier
	StatusFailed   ExtractStatus = "FAILED"    // extraction failed, record still written
)
