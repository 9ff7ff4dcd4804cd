// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package budget

// Progress percentages shown by the project editor for each lifecycle
// status. The mapping is fixed; the backend stores only the status.
const (
	progressDraft      = 0
	progressStudy      = 25
	progressApproved   = 50
	progressInProgress = 75
	progressDone       = 100
)

// Progress returns the completion percentage displayed for the status.
// Cancelled projects report 0: their progress bar is hidden, not rewound.
func (s ProjectStatus) Progress() int {
	switch s {
	case StatusDraft:
		return progressDraft
	case StatusStudy:
		return progressStudy
	case StatusApproved:
		return progressApproved
	case StatusInProgress:
		return progressInProgress
	case StatusDone:
		return progressDone
	case StatusCancelled:
		return 0
	default:
		return 0
	}
}

// IsTerminal reports whether the status ends the project lifecycle.
func (s ProjectStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Label returns the human-readable label for the status.
func (s ProjectStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusStudy:
		return "Under study"
	case StatusApproved:
		return "Approved"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}
