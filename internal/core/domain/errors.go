package domain

import "errors"

// Common domain errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
)

// UserErrors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserInactive      = errors.New("user account is inactive")
	ErrReferrerNotFound  = errors.New("referral code does not match any user")
)

// CommissionErrors
var (
	ErrInvalidAmount         = errors.New("package amount must be greater than zero")
	ErrCommissionNotFound    = errors.New("commission not found")
	ErrCommissionNotPending  = errors.New("commission must be in PENDING status to be paid")
	ErrTierNotFound          = errors.New("tier not found")
	ErrTierNotMonotonic      = errors.New("tier requirements must stay between the adjacent ranks")
	ErrQualificationNotFound = errors.New("tier qualification not found")
)

// AssetErrors
var (
	ErrAllocationNotFound   = errors.New("asset allocation not found")
	ErrAssetNotAvailable    = errors.New("physical asset is not available for allocation")
	ErrBuybackNotCompleted  = errors.New("allocation must be in COMPLETED status to request buyback")
	ErrBuybackOfferTooHigh  = errors.New("buyback offer exceeds the maximum allowed offer")
	ErrRecoveryNotForfeited = errors.New("allocation must be in FORFEITED status to be recovered")
	ErrUnknownAssetType     = errors.New("unknown asset type")
)
