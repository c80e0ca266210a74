// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New("test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)
	assert.Nil(t, revert.Unwrap())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_Kind(t *testing.T) {
	errKind := errors.New("insufficient stake")
	other := errors.New("other")

	revert := Kind(errKind, "Insufficient staked balance")
	assert.Equal(t, "Insufficient staked balance", revert.Error())
	assert.ErrorIs(t, revert, errKind)
	assert.NotErrorIs(t, revert, other)

	wrapped := pkgerrors.Wrap(revert, "unstake")
	assert.True(t, IsRevertErr(wrapped))
	assert.ErrorIs(t, wrapped, errKind)
}
