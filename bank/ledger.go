// Package bank provides an in-process ledger implementing the streampay
// value-transfer primitive, with transaction audit logging. Embedders with a
// real ledger supply their own types.BankKeeper instead.
package bank

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/productscience/streampay/x/streampay/types"
)

// ErrInsufficientBalance is returned when a holder cannot cover a transfer.
var ErrInsufficientBalance = sdkerrors.Register("bank", 1200, "insufficient balance")

type LogConfig struct {
	DoubleEntry bool   `json:"double_entry"`
	LogLevel    string `json:"log_level"`
}

// Ledger is an in-memory multi-denom balance table. Transfers are atomic:
// both sides move under one lock or neither does.
type Ledger struct {
	logger    log.Logger
	logConfig LogConfig

	mu       sync.Mutex
	balances map[string]map[string]math.Int // account -> denom -> amount
}

var _ types.BankKeeper = (*Ledger)(nil)

func NewLedger(logger log.Logger, logConfig LogConfig) *Ledger {
	return &Ledger{
		logger:    logger,
		logConfig: logConfig,
		balances:  make(map[string]map[string]math.Int),
	}
}

// Logger returns a bank-specific logger.
func (l *Ledger) Logger() log.Logger {
	return l.logger.With("module", "bank")
}

// Mint credits an account out of thin air. Test and bootstrap helper.
func (l *Ledger) Mint(account, denom string, amount math.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(account, denom, amount)
	l.logTransaction(account, "supply", denom, amount, "mint")
}

// Balance returns the account's holdings of denom.
func (l *Ledger) Balance(account, denom string) math.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceOf(account, denom)
}

func (l *Ledger) SendToModule(ctx context.Context, from string, denom string, amount math.Int, memo string) error {
	return l.transfer(from, types.ModuleAccount, denom, amount, memo)
}

func (l *Ledger) SendFromModule(ctx context.Context, to string, denom string, amount math.Int, memo string) error {
	return l.transfer(types.ModuleAccount, to, denom, amount, memo)
}

func (l *Ledger) transfer(from, to, denom string, amount math.Int, memo string) error {
	if amount.IsNil() || !amount.IsPositive() {
		return sdkerrors.Wrapf(ErrInsufficientBalance, "transfer amount %s must be positive", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	have := l.balanceOf(from, denom)
	if have.LT(amount) {
		return sdkerrors.Wrapf(ErrInsufficientBalance, "account %s has %s%s, needs %s", from, have, denom, amount)
	}
	l.balances[from][denom] = have.Sub(amount)
	l.credit(to, denom, amount)
	l.logTransaction(to, from, denom, amount, memo)
	return nil
}

func (l *Ledger) balanceOf(account, denom string) math.Int {
	if denoms, ok := l.balances[account]; ok {
		if amount, ok := denoms[denom]; ok {
			return amount
		}
	}
	return math.ZeroInt()
}

func (l *Ledger) credit(account, denom string, amount math.Int) {
	denoms, ok := l.balances[account]
	if !ok {
		denoms = make(map[string]math.Int)
		l.balances[account] = denoms
	}
	current, ok := denoms[denom]
	if !ok {
		current = math.ZeroInt()
	}
	denoms[denom] = current.Add(amount)
}

func (l *Ledger) logTransaction(to, from, denom string, amount math.Int, memo string) {
	if amount.IsZero() {
		return
	}
	logFunc := l.getLogFunction(l.logConfig.LogLevel)
	if l.logConfig.DoubleEntry {
		logFunc("TransactionAudit", "type", "debit", "account", to, "counteraccount", from, "amount", amount.String(), "denom", denom, "memo", memo)
		logFunc("TransactionAudit", "type", "credit", "account", from, "counteraccount", to, "amount", amount.Neg().String(), "denom", denom, "memo", memo)
	} else {
		logFunc(fmt.Sprintf("TransactionEntry to=%s from=%s amount=%20s %-10s memo=%s", to, from, amount.String(), denom, memo))
	}
}

func (l *Ledger) getLogFunction(level string) func(msg string, keyvals ...interface{}) {
	switch strings.ToLower(level) {
	case "debug":
		return l.Logger().Debug
	case "warn":
		return l.Logger().Warn
	default:
		return l.Logger().Info
	}
}
