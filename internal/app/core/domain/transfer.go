package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer 一次轉帳請求，不會被保存
type Transfer struct {
	// ID: 只用來串接 log
	ID     uuid.UUID
	FromID string
	ToID   string
	Amount decimal.Decimal
}

func NewTransfer(fromID, toID string, amount decimal.Decimal) *Transfer {
	return &Transfer{
		ID:     uuid.New(),
		FromID: fromID,
		ToID:   toID,
		Amount: amount,
	}
}

// Validate 不需要鎖就能做的檢查
func (t *Transfer) Validate() error {
	if !t.Amount.IsPositive() {
		return &InvalidAmountError{Amount: t.Amount, Err: ErrAmountMustBePositive}
	}
	return nil
}

// SentMessage 轉出方的通知內容
func (t *Transfer) SentMessage() string {
	return "Transferred " + FormatAmount(t.Amount) + " to account " + t.ToID
}

// ReceivedMessage 轉入方的通知內容
func (t *Transfer) ReceivedMessage() string {
	return "Received " + FormatAmount(t.Amount) + " from account " + t.FromID
}

// FormatAmount 金額字串，不使用科學記號
//
// 整數不帶小數點 (200)，有小數位時保留原本的位數 (200.50)
func FormatAmount(amount decimal.Decimal) string {
	if exp := amount.Exponent(); exp < 0 {
		return amount.StringFixed(-exp)
	}
	return amount.String()
}
