package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes.
var (
	// ErrNoIdentity means the request carried no usable identity at all
	ErrNoIdentity = errors.New("no identity on request")

	// ErrUnregisteredUser means the identity is valid but no user row
	// exists for it
	ErrUnregisteredUser = errors.New("user is not registered")

	// ErrForbidden means the caller's role does not permit the operation
	ErrForbidden = errors.New("operation not permitted for this role")

	// ErrNotEnrolled means the caller is not enrolled in the target class
	ErrNotEnrolled = errors.New("user is not enrolled in this class")

	// ErrBadPayload means the request body was malformed or missing
	// required fields
	ErrBadPayload = errors.New("invalid request payload")

	// ErrUnknownValue means a referenced catalog entry is not in the
	// active set
	ErrUnknownValue = errors.New("unknown or inactive catalog entry")

	// ErrDuplicateValue means the same entry was referenced twice in
	// one submission
	ErrDuplicateValue = errors.New("duplicate entry in submission")

	// ErrTooManySelections means the submission exceeds the selection
	// count limit
	ErrTooManySelections = errors.New("too many selections")

	// ErrCoinBudgetExceeded means the submitted coin weights sum past
	// the budget
	ErrCoinBudgetExceeded = errors.New("coin budget exceeded")

	// ErrMissionNotAllowed means the mission is not on the class
	// allow-list
	ErrMissionNotAllowed = errors.New("mission not allowed for this class")

	// ErrNotFound means the addressed entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUser means a user with this email already exists
	ErrDuplicateUser = errors.New("a user with this email already exists")

	// ErrAlreadyEnrolled means the user already holds this enrollment
	ErrAlreadyEnrolled = errors.New("user is already enrolled")

	// ErrCodeInvalid means the join code is unknown, closed, expired or
	// out of uses
	ErrCodeInvalid = errors.New("join code is not redeemable")

	// ErrUpstream means an external dependency failed
	ErrUpstream = errors.New("upstream service failed")
)
