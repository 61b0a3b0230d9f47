/*
 * kurozora-bot is a Discord bot to search and share the Kurozora catalog.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kurozora/kurozora-bot/pkg/utils"
)

// FlexInt unmarshals from a JSON number, a numeric string, or null.
type FlexInt int64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (fi *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" || string(b) == `""` {
		*fi = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*fi = FlexInt(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return utils.PrintErrorAndReturn(err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*fi = 0
		return nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return utils.PrintErrorAndReturn(err)
	}
	*fi = FlexInt(i)
	return nil
}

// FlexString unmarshals from a JSON string, a number, or null.
type FlexString string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (fs *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*fs = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*fs = FlexString(s)
		return nil
	}
	*fs = FlexString(b)
	return nil
}

// Label is either a plain string or an object carrying a "name".
type Label string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (l *Label) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = ""
		return nil
	}
	if b[0] == '{' {
		var named struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(b, &named); err != nil {
			return err
		}
		*l = Label(named.Name)
		return nil
	}
	var fs FlexString
	if err := fs.UnmarshalJSON(b); err != nil {
		return err
	}
	*l = Label(fs)
	return nil
}
