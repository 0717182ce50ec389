// Package models defines data structures for harvested committee meetings.
package models

import "time"

// Chamber is the legislative chamber a meeting belongs to.
type Chamber string

// Chambers.
const (
	ChamberHouse  Chamber = "house"
	ChamberSenate Chamber = "senate"
)

// Source names the upstream origin of a record.
type Source string

// Sources, in snapshot priority order.
const (
	SourceHouse  Source = "docs.house.gov"
	SourceSenate Source = "senate.gov"
)

// SourcePriority is the fixed output order of sources in a snapshot.
var SourcePriority = []Source{SourceHouse, SourceSenate}

// UnknownCommittee is the visible placeholder for a committee that could not be resolved.
const UnknownCommittee = "Unknown Committee"

// Meeting is the canonical record shared by every source.
type Meeting struct {
	// MeetingID is unique within a source. Upstream identifiers are used when
	// available, otherwise a composite of date, committee and index.
	MeetingID        string  `json:"meeting_id"`
	Chamber          Chamber `json:"chamber"`
	CommitteeName    string  `json:"committee_name"`
	SubcommitteeName string  `json:"subcommittee_name,omitempty"`

	OfficialTitle   string `json:"official_title,omitempty"`
	ColloquialTitle string `json:"colloquial_title,omitempty"`
	// TitleOrSubject mirrors OfficialTitle for older consumers.
	TitleOrSubject string `json:"title_or_subject,omitempty"`

	MeetingType string `json:"meeting_type,omitempty"`
	// Date is the long form "January 2, 2006".
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	Location  string `json:"location,omitempty"`
	Status    string `json:"status,omitempty"`

	DetailPageURL string `json:"detail_page_url"`
	VideoURL      string `json:"video_url,omitempty"`

	Witnesses          []string `json:"witnesses,omitempty"`
	RelatedLegislation []string `json:"related_legislation,omitempty"`

	Source     Source    `json:"source"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Key identifies a meeting within a snapshot.
func (m Meeting) Key() string {
	return string(m.Chamber) + ":" + m.MeetingID
}

// Snapshot is the persisted output of one harvest run.
type Snapshot struct {
	UpdatedAt time.Time `json:"updated_at"`
	Count     int       `json:"count"`
	Meetings  []Meeting `json:"meetings"`
}

// Batch is the output of one source for one run.
type Batch struct {
	Source   Source
	Meetings []Meeting
}
