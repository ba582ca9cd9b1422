package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound   = errors.New("not_found")
	ErrValidation = errors.New("validation")
	ErrRejected   = errors.New("rejected")
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

// RejectionKind names the business rule that refused an operation.
type RejectionKind string

const (
	KindNotFound       RejectionKind = "not_found"
	KindSelfReference  RejectionKind = "self_reference"
	KindAlreadyFriends RejectionKind = "already_friends"
	KindNotFriends     RejectionKind = "not_friends"
	KindPending        RejectionKind = "request_pending"
	KindNoPending      RejectionKind = "no_pending_request"
	KindNotPending     RejectionKind = "request_not_pending"
	KindForbidden      RejectionKind = "forbidden"
	KindNotOwner       RejectionKind = "not_owner"
	KindOwnerProtected RejectionKind = "owner_protected"
	KindAlreadyMember  RejectionKind = "already_member"
	KindNotMember      RejectionKind = "not_member"
	KindAlreadyMod     RejectionKind = "already_moderator"
	KindNotModerator   RejectionKind = "not_moderator"
	KindPrivateGroup   RejectionKind = "private_group"
	KindEventPast      RejectionKind = "event_past"
)

// Rejection is a business-rule or authorization refusal. The operation made no state change.
type Rejection struct {
	Kind RejectionKind
}

func (e *Rejection) Error() string { return "rejected: " + string(e.Kind) }

func (e *Rejection) Unwrap() error { return ErrRejected }

// Is matches any Rejection of the same kind, so wrapped copies compare equal to the sentinels.
func (e *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Kind == e.Kind
}

func Reject(kind RejectionKind) error {
	return &Rejection{Kind: kind}
}

var (
	// ErrMissing refuses operations that reference an unknown group, event, request or user.
	ErrMissing        = Reject(KindNotFound)
	ErrSelfReference  = Reject(KindSelfReference)
	ErrAlreadyFriends = Reject(KindAlreadyFriends)
	ErrNotFriends     = Reject(KindNotFriends)
	ErrRequestPending = Reject(KindPending)
	ErrNoPending      = Reject(KindNoPending)
	ErrNotPending     = Reject(KindNotPending)
	ErrForbidden      = Reject(KindForbidden)
	ErrNotOwner       = Reject(KindNotOwner)
	ErrOwnerProtected = Reject(KindOwnerProtected)
	ErrAlreadyMember  = Reject(KindAlreadyMember)
	ErrNotMember      = Reject(KindNotMember)
	ErrAlreadyMod     = Reject(KindAlreadyMod)
	ErrNotModerator   = Reject(KindNotModerator)
	ErrPrivateGroup   = Reject(KindPrivateGroup)
	ErrEventPast      = Reject(KindEventPast)
)

// RejectionKindOf reports the kind of the first Rejection in err's chain.
func RejectionKindOf(err error) (RejectionKind, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Kind, true
	}
	return "", false
}

// Succeeded folds an operation result into the plain success flag exposed to UI callers.
func Succeeded(err error) bool {
	return err == nil
}
