package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

type notification struct {
	AccountID string
	Message   string
}

// recordingNotifier 記錄所有通知，failFor 中的帳戶會回傳錯誤 (但仍記錄)
type recordingNotifier struct {
	mu      sync.Mutex
	sent    []notification
	failFor map[string]error
}

func (n *recordingNotifier) Notify(_ context.Context, account *domain.Account, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{AccountID: account.ID(), Message: message})
	return n.failFor[account.ID()]
}

func (n *recordingNotifier) notifications() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

var errNotifierDown = errors.New("notifier down")
