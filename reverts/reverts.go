// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the error raised when a ledger operation aborts and
// all of its effects are rolled back.
package reverts

import (
	"errors"
)

type ErrRevert struct {
	message string
	kind    error
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

// Kind returns a revert classified by kind, matchable with errors.Is.
func Kind(kind error, message string) *ErrRevert {
	return &ErrRevert{
		message: message,
		kind:    kind,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Unwrap() error {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
