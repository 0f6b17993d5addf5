package errorx

type Code int

// Kind groups codes into the categories callers react to.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindAuthorization
	KindNotFound
	KindTransport
)

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Friendship codes
	InvalidTarget    Code = 200001
	DuplicateRequest Code = 200002
	AlreadyResolved  Code = 200003
	AlreadyFriends   Code = 200004

	// Participation codes
	AlreadyJoined         Code = 300001
	AlreadyCheckedInToday Code = 300002
	NotActive             Code = 300003

	// Comment codes
	EmptyContent  Code = 400001
	InvalidParent Code = 400002
)

func (c Code) Kind() Kind {
	switch c {
	case BadRequest, InvalidTarget, EmptyContent, InvalidParent, TooManyRequests:
		return KindValidation
	case AlreadyExists, DuplicateRequest, AlreadyResolved, AlreadyFriends,
		AlreadyJoined, AlreadyCheckedInToday, NotActive:
		return KindConflict
	case PermissionDenied, Unauthenticated:
		return KindAuthorization
	case NotFound:
		return KindNotFound
	case Internal, Unavailable, BadResponse:
		return KindTransport
	}

	return KindUnknown
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindConflict:
		return "ConflictError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFoundError"
	case KindTransport:
		return "TransportError"
	}

	return "UnknownError"
}
