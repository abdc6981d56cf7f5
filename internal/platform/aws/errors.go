package aws

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// apiErrorCode extracts the EC2 API error code, or "".
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFound reports whether the error is the provider's not-found
// family (InvalidVpcID.NotFound, InvalidGroup.NotFound, ...).
func IsNotFound(err error) bool {
	return strings.HasSuffix(apiErrorCode(err), ".NotFound")
}

// IsDuplicate reports whether the error is the provider's duplicate
// family (InvalidPermission.Duplicate, InvalidGroup.Duplicate, ...),
// raised when a mutation was already applied.
func IsDuplicate(err error) bool {
	return strings.HasSuffix(apiErrorCode(err), ".Duplicate")
}

// IsThrottled reports whether the error is a rate-limit rejection and
// therefore retryable.
func IsThrottled(err error) bool {
	switch apiErrorCode(err) {
	case "RequestLimitExceeded", "Throttling", "ThrottlingException":
		return true
	}
	return false
}
