package services

import "errors"

// Shared business errors, mapped to HTTP statuses in the handlers layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrPlayerNameRequired     = errors.New("player display name is required")
	ErrClubNameRequired       = errors.New("club name is required")
	ErrClubRatingOutOfRange   = errors.New("club star rating must be between 0.5 and 5.0")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTournamentInvalidMode  = errors.New("tournament mode must be 1v1 or 2v2")
	ErrRosterTooSmall         = errors.New("tournament needs at least 2 players")
	ErrRosterLocked           = errors.New("roster cannot change after the tournament started")
	ErrMatchNotEditable       = errors.New("match score can only change while scheduled or playing")
	ErrFriendlyNeedsDate      = errors.New("friendly match requires a played_on date")
	ErrFriendlySideInvalid    = errors.New("friendly match sides must match the mode's side size")
	ErrScoreNegative          = errors.New("goals cannot be negative")

	// Conflicts
	ErrPlayerNameConflict     = errors.New("player display name is already in use")
	ErrClubNameConflict       = errors.New("club name is already in use for this game")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrRosterPlayerConflict   = errors.New("player is already in the tournament roster")

	// Authentication / authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Entity lookups
	ErrUserNotFound       = errors.New("user not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrClubNotFound       = errors.New("club not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrCupNotFound        = errors.New("cup not found")

	// Tournament lifecycle
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentHasNoFixtures           = errors.New("tournament has no generated fixtures")
	ErrTournamentMatchesUnfinished       = errors.New("tournament still has unfinished matches")
)
