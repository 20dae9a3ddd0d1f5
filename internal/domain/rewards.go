package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// RewardsDecision: ответ провайдера вознаграждений по корзине.
type RewardsDecision struct {
	DiscountAmount      decimal.Decimal
	AppliedRewards      []string
	LoyaltyPointsUsed   int64
	LoyaltyPointsEarned int64
	Message             string
}

// GatewayOperation: операция провайдера вознаграждений.
type GatewayOperation string

const (
	GatewayOpSyncProfile     GatewayOperation = "sync_profile"
	GatewayOpEvaluateSession GatewayOperation = "evaluate_session"
	GatewayOpConfirmLoyalty  GatewayOperation = "confirm_loyalty"
)

// GatewayErrorKind классифицирует отказ провайдера.
type GatewayErrorKind string

const (
	// GatewayTransient: сетевой сбой, таймаут или временная недоступность.
	GatewayTransient GatewayErrorKind = "transient-network"
	// GatewayRejected: провайдер ответил отказом.
	GatewayRejected GatewayErrorKind = "provider-rejected"
	// GatewayUnexpected: всё остальное, включая нечитаемый ответ.
	GatewayUnexpected GatewayErrorKind = "unexpected"
)

// GatewayError: единый формат ошибок RewardsGateway.
type GatewayError struct {
	Op         GatewayOperation
	Kind       GatewayErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("rewards %s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Transient сообщает, что повтор вызова имеет смысл.
func (e *GatewayError) Transient() bool {
	return e.Kind == GatewayTransient
}

// AsGatewayError достаёт GatewayError из цепочки.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// ClassifyGatewayError приводит произвольную ошибку транспорта к GatewayError.
// Истечение контекста считается сетевым сбоем.
func ClassifyGatewayError(op GatewayOperation, err error) *GatewayError {
	if err == nil {
		return nil
	}
	if ge, ok := AsGatewayError(err); ok {
		return ge
	}
	kind := GatewayUnexpected
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = GatewayTransient
	}
	return &GatewayError{Op: op, Kind: kind, Err: err}
}
