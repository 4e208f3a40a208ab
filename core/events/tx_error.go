// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package events

import (
	"context"

	"code.vegaprotocol.io/marketplace/core/types"
)

type TxErr struct {
	*Base
	partyID string
	command string
	errMsg  string
}

func NewTxErrEvent(ctx context.Context, err error, partyID string, cmd types.Command) *TxErr {
	evt := &TxErr{
		Base:    newBase(ctx, TxErrEvent),
		partyID: partyID,
		errMsg:  err.Error(),
	}
	if cmd != nil {
		evt.command = cmd.CommandName()
	}
	return evt
}

func (t TxErr) IsParty(id string) bool {
	return t.partyID == id
}

func (t TxErr) PartyID() string {
	return t.partyID
}

func (t TxErr) Command() string {
	return t.command
}

func (t TxErr) ErrMsg() string {
	return t.errMsg
}
