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

package selection

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseReply interprets a follow-up message against n candidates. It returns
// the 1-based choice, or cancel=true. Anything else is ErrInvalidReply.
func ParseReply(text string, n int) (choice int, cancel bool, err error) {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, "cancel") {
		return 0, true, nil
	}
	v, convErr := strconv.Atoi(text)
	if convErr != nil {
		return 0, false, fmt.Errorf("%w: %q is not a number", ErrInvalidReply, text)
	}
	if v < 1 || v > n {
		return 0, false, fmt.Errorf("%w: %d is outside 1..%d", ErrInvalidReply, v, n)
	}
	return v, false, nil
}
