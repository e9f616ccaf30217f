package leave

import (
	"encoding/json"
	"fmt"
)

// Type is the closed set of leave categories. Values are only ever
// produced by ParseType at the API boundary, so an out-of-range Type
// cannot reach the services.
type Type uint8

const (
	TypeUnpaid Type = iota
	TypePaid
	TypeMaternity
	TypeWedding
	TypeBereavement
)

var typeNames = map[Type]string{
	TypeUnpaid:      "Unpaid",
	TypePaid:        "Paid",
	TypeMaternity:   "Maternity",
	TypeWedding:     "Wedding",
	TypeBereavement: "Bereavement",
}

var typesByName = map[string]Type{
	"Unpaid":      TypeUnpaid,
	"Paid":        TypePaid,
	"Maternity":   TypeMaternity,
	"Wedding":     TypeWedding,
	"Bereavement": TypeBereavement,
}

func ParseType(s string) (Type, error) {
	if t, ok := typesByName[s]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("invalid leave type %q", s)
}

func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Status is the closed set of request states. Transitions happen only
// inside the workflow service.
type Status uint8

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
	StatusCancelled
	StatusDeleted
)

var statusNames = map[Status]string{
	StatusPending:   "Pending",
	StatusApproved:  "Approved",
	StatusRejected:  "Rejected",
	StatusCancelled: "Cancelled",
	StatusDeleted:   "Deleted",
}

var statusesByName = map[string]Status{
	"Pending":   StatusPending,
	"Approved":  StatusApproved,
	"Rejected":  StatusRejected,
	"Cancelled": StatusCancelled,
	"Deleted":   StatusDeleted,
}

func ParseStatus(s string) (Status, error) {
	if st, ok := statusesByName[s]; ok {
		return st, nil
	}
	return 0, fmt.Errorf("invalid request status %q", s)
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
