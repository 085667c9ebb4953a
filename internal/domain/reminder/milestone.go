package reminder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Milestone is an approved-hours threshold at which coordinators are asked for feedback.
type Milestone int

const (
	Milestone15 Milestone = 15
	Milestone30 Milestone = 30
	Milestone45 Milestone = 45
	Milestone60 Milestone = 60
)

// Milestones is the fixed ascending set of thresholds. No other value is a valid key.
var Milestones = []Milestone{Milestone15, Milestone30, Milestone45, Milestone60}

var ErrInvalidMilestone = fmt.Errorf("invalid feedback milestone")

// IsValid reports whether m is one of the fixed thresholds.
func (m Milestone) IsValid() bool {
	for _, known := range Milestones {
		if m == known {
			return true
		}
	}
	return false
}

func (m Milestone) String() string {
	return strconv.Itoa(int(m))
}

// ParseMilestone converts a stored key such as "30" back into a Milestone.
func ParseMilestone(s string) (Milestone, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMilestone, s)
	}
	m := Milestone(n)
	if !m.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMilestone, n)
	}
	return m, nil
}

// JoinMilestones renders milestones in ascending order separated by ", ".
func JoinMilestones(ms []Milestone) string {
	sorted := make([]Milestone, len(ms))
	copy(sorted, ms)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, m := range sorted {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}

// Tracking records which milestones already triggered a reminder for one volunteer.
// Stored in the feedbackReminderTracking collection, keyed by volunteer ID.
type Tracking struct {
	VolunteerID    string
	SentMilestones map[Milestone]bool
	LastUpdated    time.Time
}

// NewTracking returns the default record: every milestone unsent, never persisted.
func NewTracking(volunteerID string) *Tracking {
	sent := make(map[Milestone]bool, len(Milestones))
	for _, m := range Milestones {
		sent[m] = false
	}
	return &Tracking{VolunteerID: volunteerID, SentMilestones: sent}
}

// Due lists, in ascending order, the milestones reached by approvedHours that have not been sent.
func (t *Tracking) Due(approvedHours float64) []Milestone {
	var due []Milestone
	for _, m := range Milestones {
		if approvedHours >= float64(m) && !t.SentMilestones[m] {
			due = append(due, m)
		}
	}
	return due
}

// Merge applies patch on top of the current flags. Unknown milestones are rejected
// and leave the record untouched.
func (t *Tracking) Merge(patch map[Milestone]bool) error {
	for m := range patch {
		if !m.IsValid() {
			return fmt.Errorf("%w: %d", ErrInvalidMilestone, int(m))
		}
	}
	if t.SentMilestones == nil {
		t.SentMilestones = make(map[Milestone]bool, len(Milestones))
	}
	for m, sent := range patch {
		t.SentMilestones[m] = sent
	}
	return nil
}

// Flags returns the milestone flags keyed by their string form, the shape every store persists.
// All four milestones are always present.
func (t *Tracking) Flags() map[string]bool {
	flags := make(map[string]bool, len(Milestones))
	for _, m := range Milestones {
		flags[m.String()] = t.SentMilestones[m]
	}
	return flags
}

// TrackingFromFlags rebuilds a record from its stored form. Missing milestones default to unsent.
func TrackingFromFlags(volunteerID string, flags map[string]bool, lastUpdated time.Time) (*Tracking, error) {
	t := NewTracking(volunteerID)
	t.LastUpdated = lastUpdated
	for key, sent := range flags {
		m, err := ParseMilestone(key)
		if err != nil {
			return nil, err
		}
		t.SentMilestones[m] = sent
	}
	return t, nil
}
