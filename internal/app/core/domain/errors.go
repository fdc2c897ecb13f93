package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrAmountMustBePositive 金額必須為正數
	ErrAmountMustBePositive = errors.New("amount must be positive")

	// ErrNegativeBalance 初始餘額不可為負數
	ErrNegativeBalance = errors.New("balance must not be negative")

	// ErrInsufficientBalance 餘額不足
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists 帳戶已存在
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrEmptyAccountID 帳戶 ID 不可為空
	ErrEmptyAccountID = errors.New("account id must not be empty")

	// ErrNotificationFailed 通知發送失敗 (餘額異動已完成，不會回滾)
	ErrNotificationFailed = errors.New("notification failed")
)

// DuplicateAccountError 建立帳戶時 ID 重複
type DuplicateAccountError struct {
	AccountID string
}

func (e *DuplicateAccountError) Error() string {
	return "Account id " + e.AccountID + " already exists!"
}

func (e *DuplicateAccountError) Is(target error) bool {
	return target == ErrAccountAlreadyExists
}

// AccountNotFoundError 查無帳戶，AccountID 為缺少的那一個
type AccountNotFoundError struct {
	AccountID string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.AccountID)
}

func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// InvalidAmountError 金額不合法
//
// Err 為 ErrAmountMustBePositive 或 ErrNegativeBalance
type InvalidAmountError struct {
	Amount decimal.Decimal
	Err    error
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: %v", FormatAmount(e.Amount), e.Err)
}

func (e *InvalidAmountError) Unwrap() error {
	return e.Err
}

// InsufficientFundsError 轉出帳戶餘額不足
type InsufficientFundsError struct {
	AccountID string
	Balance   decimal.Decimal
	Amount    decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return "Insufficient Funds in account " + e.AccountID
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// NotificationError 收集一次轉帳中所有失敗的通知
type NotificationError struct {
	Failures []NotificationFailure
}

// NotificationFailure 單一帳戶的通知失敗
type NotificationFailure struct {
	AccountID string
	Err       error
}

func (e *NotificationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("account %s: %v", f.AccountID, f.Err))
	}
	return ErrNotificationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *NotificationError) Is(target error) bool {
	return target == ErrNotificationFailed
}

func (e *NotificationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
