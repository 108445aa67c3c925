package kpi

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownLevel  = errors.New("unknown evaluation level")
	ErrMissingField  = errors.New("required field missing")
	ErrNotFound      = errors.New("entity not found")
	ErrEmptyDataset  = errors.New("dataset is empty")
	ErrInvalidPeriod = errors.New("invalid period")
)

// DecodeError describes an ingested record that was rejected.
type DecodeError struct {
	Collection string
	Index      int
	ID         string
	Reason     string
}

func (e *DecodeError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("decode %s[%d] (id %s): %s", e.Collection, e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("decode %s[%d]: %s", e.Collection, e.Index, e.Reason)
}

// DecodeIssue is a problem found while ingesting remote data. Rejected issues
// carry a DecodeError and the record was dropped; the others were tolerated
// and normalized.
type DecodeIssue struct {
	Collection string
	Index      int
	ID         string
	Reason     string
	Rejected   bool
}

func (i DecodeIssue) Err() error {
	if !i.Rejected {
		return nil
	}
	return &DecodeError{Collection: i.Collection, Index: i.Index, ID: i.ID, Reason: i.Reason}
}
