package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Workload score weights. Higher score is better; raw load balance still
// drives candidate ordering, the score is kept for display and audit.
const (
	scoreWeightWorkload   = 0.4
	scoreWeightSuccess    = 0.4
	scoreWeightExperience = 0.2

	experiencePointsPerYear = 2.0
	experiencePointsCap     = 20.0
)

// Lawyer is a legal-counsel resource available for case assignment.
type Lawyer struct {
	ID                 string  `gorm:"type:uuid;primaryKey"`
	Code               string  `gorm:"type:varchar(32);not null"`
	Name               string  `gorm:"type:varchar(255);not null"`
	Specialization     string  `gorm:"type:varchar(255);not null"`
	Jurisdiction       string  `gorm:"type:varchar(255);not null"`
	ExperienceYears    int     `gorm:"not null;default:0"`
	MaxCaseLoad        int     `gorm:"not null"`
	CurrentCaseLoad    int     `gorm:"not null;default:0"`
	SuccessRatePercent float64 `gorm:"not null;default:0"`
	IsActive           bool    `gorm:"not null;default:true"`
	IsAvailable        bool    `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (l *Lawyer) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: lawyer name is required", ErrValidation)
	}
	if l.MaxCaseLoad < 1 {
		return fmt.Errorf("%w: maxCaseLoad must be >= 1", ErrValidation)
	}
	if l.CurrentCaseLoad < 0 {
		return fmt.Errorf("%w: currentCaseLoad must be >= 0", ErrValidation)
	}
	if l.ExperienceYears < 0 {
		return fmt.Errorf("%w: experienceYears must be >= 0", ErrValidation)
	}
	if l.SuccessRatePercent < 0 || l.SuccessRatePercent > 100 {
		return fmt.Errorf("%w: successRatePercent must be between 0 and 100", ErrValidation)
	}
	return nil
}

// Eligible reports whether the lawyer can take a new assignment.
func (l *Lawyer) Eligible() bool {
	return l.IsActive && l.IsAvailable && l.CurrentCaseLoad < l.MaxCaseLoad
}

// WorkloadPercent is current load as a percentage of capacity.
func (l *Lawyer) WorkloadPercent() float64 {
	if l.MaxCaseLoad <= 0 {
		return 0
	}
	return 100 * float64(l.CurrentCaseLoad) / float64(l.MaxCaseLoad)
}

// Score is the composite workload score:
//
//	0.4*(100 - workload%) + 0.4*successRate% + 0.2*min(experienceYears*2, 20)
//
// Deterministic, roughly within [0, 100], rounded to two decimal places so
// displayed values compare stably.
func (l *Lawyer) Score() float64 {
	experience := math.Min(float64(l.ExperienceYears)*experiencePointsPerYear, experiencePointsCap)

	score := scoreWeightWorkload*(100-l.WorkloadPercent()) +
		scoreWeightSuccess*l.SuccessRatePercent +
		scoreWeightExperience*experience

	return math.Round(score*100) / 100
}
