package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestPlacementErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "user not found",
			err:      &PlacementError{Kind: PlacementUserNotFound, Step: StepResolveUser, UserID: "u-1", Err: ErrUserNotFound},
			sentinel: ErrUserNotFound,
		},
		{
			name:     "rewards unavailable",
			err:      &PlacementError{Kind: PlacementRewardsUnavailable, Step: StepEvaluateRewards, UserID: "u-1", Err: cause},
			sentinel: ErrRewardsUnavailable,
		},
		{
			name:     "persistence failure wrapped",
			err:      fmt.Errorf("handler: %w", &PlacementError{Kind: PlacementPersistenceFailure, Step: StepPersistOrder, Err: cause}),
			sentinel: ErrPersistenceFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Fatalf("expected %v to match %v", tt.err, tt.sentinel)
			}
			pe, ok := AsPlacementError(tt.err)
			if !ok {
				t.Fatalf("expected PlacementError in chain of %v", tt.err)
			}
			if pe.Err != nil && !errors.Is(tt.err, pe.Err) {
				t.Fatalf("cause %v must stay reachable", pe.Err)
			}
		})
	}
}

func TestPlacementErrorMessageCarriesOrderID(t *testing.T) {
	err := &PlacementError{
		Kind:    PlacementPersistenceFailure,
		Step:    StepUpdateUserStats,
		UserID:  "u-7",
		OrderID: "order-42",
		Err:     errors.New("deadlock detected"),
	}
	want := "place order for user u-7: persistence-failure at step update_user_stats (order order-42 persisted): deadlock detected"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestClassifyGatewayError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want GatewayErrorKind
	}{
		{name: "deadline", err: fmt.Errorf("post: %w", context.DeadlineExceeded), want: GatewayTransient},
		{name: "canceled", err: context.Canceled, want: GatewayTransient},
		{name: "already classified", err: &GatewayError{Op: GatewayOpConfirmLoyalty, Kind: GatewayRejected}, want: GatewayRejected},
		{name: "unknown", err: errors.New("boom"), want: GatewayUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyGatewayError(GatewayOpEvaluateSession, tt.err)
			if got.Kind != tt.want {
				t.Errorf("ClassifyGatewayError() kind = %v, want %v", got.Kind, tt.want)
			}
		})
	}

	if ClassifyGatewayError(GatewayOpSyncProfile, nil) != nil {
		t.Fatal("nil error must stay nil")
	}
}

func TestIsIdempotencyConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "idempotency already exists", err: ErrIdempotencyKeyAlreadyExists, want: true},
		{name: "idempotency hash mismatch", err: ErrIdempotencyHashMismatch, want: true},
		{name: "wrapped idempotency conflict", err: errors.Join(ErrIdempotencyHashMismatch, errors.New("extra context")), want: true},
		{name: "non idempotency error", err: ErrOrderExists, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsIdempotencyConflict(tt.err); got != tt.want {
				t.Errorf("IsIdempotencyConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidation(t *testing.T) {
	err := OrderRequest{}.Validate()
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !errors.Is(err, ErrUserIDRequired) || !errors.Is(err, ErrItemsRequired) {
		t.Fatalf("validation error must expose every problem, got %v", err)
	}
	if IsValidation(ErrUserNotFound) {
		t.Fatal("sentinel is not a validation error")
	}
}
