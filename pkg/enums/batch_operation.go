package enums

import "fmt"

// BatchOperation defines which transformation a batch job applies to its assets.
type BatchOperation string

const (
	BatchOperationAnalyze   BatchOperation = "analyze"
	BatchOperationResize    BatchOperation = "resize"
	BatchOperationFilter    BatchOperation = "filter"
	BatchOperationThumbnail BatchOperation = "thumbnail"
)

var validBatchOperations = []BatchOperation{
	BatchOperationAnalyze,
	BatchOperationResize,
	BatchOperationFilter,
	BatchOperationThumbnail,
}

// String returns the literal string for the operation.
func (b BatchOperation) String() string {
	return string(b)
}

// IsValid reports whether the operation is known.
func (b BatchOperation) IsValid() bool {
	for _, candidate := range validBatchOperations {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBatchOperation converts raw input into a BatchOperation.
func ParseBatchOperation(value string) (BatchOperation, error) {
	for _, candidate := range validBatchOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid batch operation %q", value)
}
