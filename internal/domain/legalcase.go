package domain

import (
	"fmt"
	"strings"
	"time"
)

// CaseStatus represents the lifecycle state of a collections case.
type CaseStatus string

const (
	CaseStatusOpen   CaseStatus = "OPEN"
	CaseStatusOnHold CaseStatus = "ON_HOLD"
	CaseStatusClosed CaseStatus = "CLOSED"
)

func (s CaseStatus) String() string { return string(s) }

func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusOnHold, CaseStatusClosed:
		return true
	}
	return false
}

// LegalCase is a collections case opened against a delinquent loan account.
type LegalCase struct {
	ID                string     `gorm:"type:uuid;primaryKey"`
	CaseCode          string     `gorm:"type:varchar(32);not null"`
	LoanAccountNumber string     `gorm:"type:varchar(64);not null"`
	BorrowerName      string     `gorm:"type:varchar(255);not null"`
	CaseType          string     `gorm:"type:varchar(64);not null"`
	CourtName         string     `gorm:"type:varchar(255)"`
	FiledDate         *time.Time `gorm:"type:date"`
	Status            CaseStatus `gorm:"type:varchar(16);not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (c *LegalCase) Validate() error {
	if strings.TrimSpace(c.LoanAccountNumber) == "" {
		return fmt.Errorf("%w: loan account number is required", ErrValidation)
	}
	if strings.TrimSpace(c.CaseType) == "" {
		return fmt.Errorf("%w: case type is required", ErrValidation)
	}
	if c.Status != "" && !c.Status.IsValid() {
		return fmt.Errorf("%w: invalid case status %q", ErrValidation, c.Status)
	}
	return nil
}

// AssignmentStatus represents the state of a case-lawyer assignment row.
type AssignmentStatus string

const (
	AssignmentStatusActive     AssignmentStatus = "ACTIVE"
	AssignmentStatusCompleted  AssignmentStatus = "COMPLETED"
	AssignmentStatusCancelled  AssignmentStatus = "CANCELLED"
	AssignmentStatusReassigned AssignmentStatus = "REASSIGNED"
)

func (s AssignmentStatus) String() string { return string(s) }

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusActive, AssignmentStatusCompleted, AssignmentStatusCancelled, AssignmentStatusReassigned:
		return true
	}
	return false
}

// CaseAssignment links a case to the lawyer currently responsible for it.
// At most one ACTIVE assignment exists per case at a time.
type CaseAssignment struct {
	ID                        string           `gorm:"type:uuid;primaryKey"`
	CaseID                    string           `gorm:"type:uuid;not null"`
	LawyerID                  string           `gorm:"type:uuid;not null"`
	AssignedAt                time.Time        `gorm:"not null"`
	WorkloadScoreAtAssignment float64          `gorm:"not null"`
	Status                    AssignmentStatus `gorm:"type:varchar(16);not null"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}
