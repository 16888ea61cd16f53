package usecase

import "github.com/muhammadowais87/client2-sub000/internal/adapters/provider"

// OutcomeKind enumerates the terminal states of one authentication attempt.
// Handlers switch on it exhaustively instead of sniffing error strings.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeRateLimited
	OutcomeUnauthorized
	OutcomeReferralRequired
	OutcomeInvalidReferral
	OutcomeInternal
)

// PublicUser is the minimal identity echo returned to the caller.
type PublicUser struct {
	ID         string `json:"id"`
	TelegramID int64  `json:"telegram_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name,omitempty"`
	Username   string `json:"username,omitempty"`
}

// Outcome is the tagged result of Authenticate. Session and User are set
// only for OutcomeOK; RetryAfter (seconds) only for OutcomeRateLimited.
type Outcome struct {
	Kind       OutcomeKind
	Session    *provider.Session
	User       *PublicUser
	RetryAfter int
	Message    string
}

func okOutcome(session *provider.Session, user *PublicUser) Outcome {
	return Outcome{Kind: OutcomeOK, Session: session, User: user}
}

func rateLimited(retryAfterSeconds int) Outcome {
	return Outcome{Kind: OutcomeRateLimited, RetryAfter: retryAfterSeconds}
}

func unauthorized() Outcome {
	return Outcome{Kind: OutcomeUnauthorized, Message: "Invalid Telegram data"}
}

func referralRequired() Outcome {
	return Outcome{Kind: OutcomeReferralRequired, Message: "A referral code is required to register"}
}

func invalidReferral() Outcome {
	return Outcome{Kind: OutcomeInvalidReferral, Message: "Invalid referral code"}
}

func internalFailure(message string) Outcome {
	return Outcome{Kind: OutcomeInternal, Message: message}
}
