// Package guard implements the admission checks run after the tenant context is
// composed. Every check returns nil to accept or a *Rejection, which carries the
// HTTP status, the machine-readable code and the client-facing message.
package guard

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a rejection. The string form is used as a metric label.
type Kind string

const (
	KindUnauthenticated      Kind = "unauthenticated"
	KindRoleMismatch         Kind = "role_mismatch"
	KindOrganizationMissing  Kind = "organization_missing"
	KindOrganizationNotFound Kind = "organization_not_found"
	KindOrganizationInactive Kind = "organization_inactive"
	KindPermissionDenied     Kind = "permission_denied"
	KindInvitationInvalid    Kind = "invitation_invalid"
	KindRouteNotAllowlisted  Kind = "route_not_allowlisted"
	KindResourceOutOfScope   Kind = "resource_out_of_scope"
	KindInternal             Kind = "internal"
)

type kindInfo struct {
	status  int
	code    string
	message string
}

var kinds = map[Kind]kindInfo{
	KindUnauthenticated:      {http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required."},
	KindRoleMismatch:         {http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource."},
	KindOrganizationMissing:  {http.StatusForbidden, "ORGANIZATION_MISSING", "User is not associated with any organization."},
	KindOrganizationNotFound: {http.StatusNotFound, "ORGANIZATION_NOT_FOUND", "Organization not found."},
	KindOrganizationInactive: {http.StatusForbidden, "ORGANIZATION_INACTIVE", "Organization is not active."},
	KindPermissionDenied:     {http.StatusForbidden, "PERMISSION_DENIED", "Permission denied."},
	KindInvitationInvalid:    {http.StatusForbidden, "INVITATION_INVALID", "No accepted invitation found."},
	KindRouteNotAllowlisted:  {http.StatusForbidden, "ROUTE_NOT_ALLOWED", "This route is not available to quality guests."},
	KindResourceOutOfScope:   {http.StatusForbidden, "RESOURCE_OUT_OF_SCOPE", "Access denied to this resource."},
	KindInternal:             {http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
}

// Status returns the HTTP status of k.
func (k Kind) Status() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Code returns the machine-readable error code of k.
func (k Kind) Code() string {
	if info, ok := kinds[k]; ok {
		return info.code
	}
	return "INTERNAL_ERROR"
}

// DefaultMessage returns the client-facing message used when none is given.
func (k Kind) DefaultMessage() string {
	if info, ok := kinds[k]; ok {
		return info.message
	}
	return kinds[KindInternal].message
}

// Debug is the diagnostic payload attached to organization rejections when
// debug errors are enabled.
type Debug struct {
	UserID         int64  `json:"user_id"`
	Role           string `json:"role"`
	OrganizationID *int64 `json:"organization_id"`
}

// Rejection is a terminal access decision.
type Rejection struct {
	Kind    Kind
	Message string
	Debug   *Debug
	// Err is the underlying cause of an internal rejection. It is logged, never
	// sent to the client.
	Err error
}

// Reject builds a rejection of kind with message, or the kind's default message
// when message is empty.
func Reject(kind Kind, message string) *Rejection {
	if message == "" {
		message = kind.DefaultMessage()
	}
	return &Rejection{Kind: kind, Message: message}
}

// Internal wraps a store failure as a 500 rejection.
func Internal(op string, err error) *Rejection {
	return &Rejection{
		Kind:    KindInternal,
		Message: KindInternal.DefaultMessage(),
		Err:     fmt.Errorf("%s: %w", op, err),
	}
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s: %v", r.Kind, r.Message, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

func (r *Rejection) Unwrap() error { return r.Err }

// Status returns the HTTP status code.
func (r *Rejection) Status() int { return r.Kind.Status() }

// Code returns the machine-readable error code.
func (r *Rejection) Code() string { return r.Kind.Code() }

// AsRejection converts err into a *Rejection. Errors that are not rejections
// become internal rejections.
func AsRejection(err error) *Rejection {
	if err == nil {
		return nil
	}
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej
	}
	return Internal("access guard", err)
}
