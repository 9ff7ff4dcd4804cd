// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"github.com/mattn/go-runewidth"
)

// TruncateWidth truncates s to at most maxWidth terminal columns, appending
// an ellipsis when truncation happens. Double-width (CJK) characters count
// as two columns, so table cells never overflow their lane.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadWidth pads s with spaces on the right up to width terminal columns.
func PadWidth(s string, width int) string {
	return runewidth.FillRight(s, width)
}
