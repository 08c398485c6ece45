package domain

type ReferenceKind string

const (
	RefRevisionStatuses     ReferenceKind = "revision_statuses"
	RefRevisionDescriptions ReferenceKind = "revision_descriptions"
	RefRevisionSteps        ReferenceKind = "revision_steps"
	RefReviewCodes          ReferenceKind = "review_codes"
)

// ReferenceEntry is one row of a reference vocabulary, always resolved by
// exact code match, never fuzzily.
type ReferenceEntry struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Label       string `json:"label"`
	LabelNative string `json:"label_native,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// StatusRegistry holds the revision status row ids resolved once at startup.
// The rest of the core works with RevisionStatus variants and never assumes
// a particular row id.
type StatusRegistry struct {
	ActiveID     int64
	SupersededID int64
	CancelledID  int64
}

func (r StatusRegistry) IDFor(status RevisionStatus) (int64, bool) {
	switch status {
	case RevisionActive:
		return r.ActiveID, true
	case RevisionSuperseded:
		return r.SupersededID, true
	case RevisionCancelled:
		return r.CancelledID, true
	}
	return 0, false
}

func (r StatusRegistry) StatusFor(id int64) (RevisionStatus, bool) {
	switch id {
	case r.ActiveID:
		return RevisionActive, true
	case r.SupersededID:
		return RevisionSuperseded, true
	case r.CancelledID:
		return RevisionCancelled, true
	}
	return "", false
}
