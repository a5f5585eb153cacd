package repository

import (
	"strings"
	"time"

	"github.com/kursadbilgin/collections-engine/internal/domain"
)

// SequenceCounterModel is the persistence model for sequence_counters.
type SequenceCounterModel struct {
	PartitionKey string `gorm:"type:varchar(32);primaryKey"`
	Prefix       string `gorm:"type:varchar(10);not null"`
	CategoryCode string `gorm:"type:varchar(10);not null;default:''"`
	DateStamp    string `gorm:"type:varchar(8);not null"`
	CurrentValue int64  `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SequenceCounterModel) TableName() string {
	return "sequence_counters"
}

// LawyerModel is the persistence model for lawyers.
type LawyerModel struct {
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

func (LawyerModel) TableName() string {
	return "lawyers"
}

// LegalCaseModel is the persistence model for legal_cases.
type LegalCaseModel struct {
	ID                string            `gorm:"type:uuid;primaryKey"`
	CaseCode          string            `gorm:"type:varchar(32);not null"`
	LoanAccountNumber string            `gorm:"type:varchar(64);not null"`
	BorrowerName      string            `gorm:"type:varchar(255);not null"`
	CaseType          string            `gorm:"type:varchar(64);not null"`
	CourtName         string            `gorm:"type:varchar(255)"`
	FiledDate         *time.Time        `gorm:"type:date"`
	Status            domain.CaseStatus `gorm:"type:varchar(16);not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (LegalCaseModel) TableName() string {
	return "legal_cases"
}

// CaseAssignmentModel is the persistence model for case_assignments.
type CaseAssignmentModel struct {
	ID                        string                  `gorm:"type:uuid;primaryKey"`
	CaseID                    string                  `gorm:"type:uuid;not null"`
	LawyerID                  string                  `gorm:"type:uuid;not null"`
	AssignedAt                time.Time               `gorm:"not null"`
	WorkloadScoreAtAssignment float64                 `gorm:"not null"`
	Status                    domain.AssignmentStatus `gorm:"type:varchar(16);not null"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

func (CaseAssignmentModel) TableName() string {
	return "case_assignments"
}

// LegalNoticeModel is the persistence model for legal_notices. Communication
// modes are stored comma-joined; the converters own the encoding.
type LegalNoticeModel struct {
	ID                   string              `gorm:"type:uuid;primaryKey"`
	NoticeCode           string              `gorm:"type:varchar(32);not null"`
	CaseID               *string             `gorm:"type:uuid"`
	LoanAccountNumber    string              `gorm:"type:varchar(64);not null"`
	BorrowerName         string              `gorm:"type:varchar(255)"`
	DPDDays              int                 `gorm:"column:dpd_days;not null"`
	TriggerType          domain.TriggerType  `gorm:"type:varchar(32);not null"`
	CommunicationModes   string              `gorm:"type:varchar(128);not null"`
	Content              string              `gorm:"type:text"`
	NoticeGenerationDate time.Time           `gorm:"type:date;not null"`
	ExpiryDate           *time.Time          `gorm:"type:date"`
	Status               domain.NoticeStatus `gorm:"type:varchar(24);not null"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (LegalNoticeModel) TableName() string {
	return "legal_notices"
}

// NoticeAcknowledgementModel is the persistence model for notice_acknowledgements.
type NoticeAcknowledgementModel struct {
	ID                  string                       `gorm:"type:uuid;primaryKey"`
	AcknowledgementCode string                       `gorm:"type:varchar(32);not null"`
	NoticeID            string                       `gorm:"type:uuid;not null"`
	AcknowledgedBy      string                       `gorm:"type:varchar(255);not null"`
	AcknowledgementDate time.Time                    `gorm:"not null"`
	AcknowledgementMode domain.CommunicationMode     `gorm:"type:varchar(16);not null"`
	ProofDocumentPath   *string                      `gorm:"type:varchar(512)"`
	Remarks             *string                      `gorm:"type:text"`
	Status              domain.AcknowledgementStatus `gorm:"type:varchar(24);not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (NoticeAcknowledgementModel) TableName() string {
	return "notice_acknowledgements"
}

// NoticeDeliveryModel is the persistence model for notice_deliveries.
type NoticeDeliveryModel struct {
	ID                string                   `gorm:"type:uuid;primaryKey"`
	NoticeID          string                   `gorm:"type:uuid;not null"`
	Mode              domain.CommunicationMode `gorm:"type:varchar(16);not null"`
	Recipient         string                   `gorm:"type:varchar(255);not null"`
	Succeeded         bool                     `gorm:"not null"`
	StatusCode        *int                     `gorm:"type:int"`
	ProviderMessageID *string                  `gorm:"type:varchar(255)"`
	Error             *string                  `gorm:"type:text"`
	CreatedAt         time.Time
}

func (NoticeDeliveryModel) TableName() string {
	return "notice_deliveries"
}

func lawyerModelFromDomain(l *domain.Lawyer) *LawyerModel {
	if l == nil {
		return nil
	}

	return &LawyerModel{
		ID:                 l.ID,
		Code:               l.Code,
		Name:               l.Name,
		Specialization:     l.Specialization,
		Jurisdiction:       l.Jurisdiction,
		ExperienceYears:    l.ExperienceYears,
		MaxCaseLoad:        l.MaxCaseLoad,
		CurrentCaseLoad:    l.CurrentCaseLoad,
		SuccessRatePercent: l.SuccessRatePercent,
		IsActive:           l.IsActive,
		IsAvailable:        l.IsAvailable,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func lawyerModelToDomain(m *LawyerModel) *domain.Lawyer {
	if m == nil {
		return nil
	}

	return &domain.Lawyer{
		ID:                 m.ID,
		Code:               m.Code,
		Name:               m.Name,
		Specialization:     m.Specialization,
		Jurisdiction:       m.Jurisdiction,
		ExperienceYears:    m.ExperienceYears,
		MaxCaseLoad:        m.MaxCaseLoad,
		CurrentCaseLoad:    m.CurrentCaseLoad,
		SuccessRatePercent: m.SuccessRatePercent,
		IsActive:           m.IsActive,
		IsAvailable:        m.IsAvailable,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func caseModelFromDomain(c *domain.LegalCase) *LegalCaseModel {
	if c == nil {
		return nil
	}

	return &LegalCaseModel{
		ID:                c.ID,
		CaseCode:          c.CaseCode,
		LoanAccountNumber: c.LoanAccountNumber,
		BorrowerName:      c.BorrowerName,
		CaseType:          c.CaseType,
		CourtName:         c.CourtName,
		FiledDate:         c.FiledDate,
		Status:            c.Status,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func caseModelToDomain(m *LegalCaseModel) *domain.LegalCase {
	if m == nil {
		return nil
	}

	return &domain.LegalCase{
		ID:                m.ID,
		CaseCode:          m.CaseCode,
		LoanAccountNumber: m.LoanAccountNumber,
		BorrowerName:      m.BorrowerName,
		CaseType:          m.CaseType,
		CourtName:         m.CourtName,
		FiledDate:         m.FiledDate,
		Status:            m.Status,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func assignmentModelToDomain(m *CaseAssignmentModel) *domain.CaseAssignment {
	if m == nil {
		return nil
	}

	return &domain.CaseAssignment{
		ID:                        m.ID,
		CaseID:                    m.CaseID,
		LawyerID:                  m.LawyerID,
		AssignedAt:                m.AssignedAt,
		WorkloadScoreAtAssignment: m.WorkloadScoreAtAssignment,
		Status:                    m.Status,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}
}

func noticeModelFromDomain(n *domain.LegalNotice) *LegalNoticeModel {
	if n == nil {
		return nil
	}

	return &LegalNoticeModel{
		ID:                   n.ID,
		NoticeCode:           n.NoticeCode,
		CaseID:               n.CaseID,
		LoanAccountNumber:    n.LoanAccountNumber,
		BorrowerName:         n.BorrowerName,
		DPDDays:              n.DPDDays,
		TriggerType:          n.TriggerType,
		CommunicationModes:   encodeModes(n.CommunicationModes),
		Content:              n.Content,
		NoticeGenerationDate: n.NoticeGenerationDate,
		ExpiryDate:           n.ExpiryDate,
		Status:               n.Status,
		CreatedAt:            n.CreatedAt,
		UpdatedAt:            n.UpdatedAt,
	}
}

func noticeModelToDomain(m *LegalNoticeModel) *domain.LegalNotice {
	if m == nil {
		return nil
	}

	return &domain.LegalNotice{
		ID:                   m.ID,
		NoticeCode:           m.NoticeCode,
		CaseID:               m.CaseID,
		LoanAccountNumber:    m.LoanAccountNumber,
		BorrowerName:         m.BorrowerName,
		DPDDays:              m.DPDDays,
		TriggerType:          m.TriggerType,
		CommunicationModes:   decodeModes(m.CommunicationModes),
		Content:              m.Content,
		NoticeGenerationDate: m.NoticeGenerationDate,
		ExpiryDate:           m.ExpiryDate,
		Status:               m.Status,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func ackModelFromDomain(a *domain.NoticeAcknowledgement) *NoticeAcknowledgementModel {
	if a == nil {
		return nil
	}

	return &NoticeAcknowledgementModel{
		ID:                  a.ID,
		AcknowledgementCode: a.AcknowledgementCode,
		NoticeID:            a.NoticeID,
		AcknowledgedBy:      a.AcknowledgedBy,
		AcknowledgementDate: a.AcknowledgementDate,
		AcknowledgementMode: a.AcknowledgementMode,
		ProofDocumentPath:   a.ProofDocumentPath,
		Remarks:             a.Remarks,
		Status:              a.Status,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func ackModelToDomain(m *NoticeAcknowledgementModel) *domain.NoticeAcknowledgement {
	if m == nil {
		return nil
	}

	return &domain.NoticeAcknowledgement{
		ID:                  m.ID,
		AcknowledgementCode: m.AcknowledgementCode,
		NoticeID:            m.NoticeID,
		AcknowledgedBy:      m.AcknowledgedBy,
		AcknowledgementDate: m.AcknowledgementDate,
		AcknowledgementMode: m.AcknowledgementMode,
		ProofDocumentPath:   m.ProofDocumentPath,
		Remarks:             m.Remarks,
		Status:              m.Status,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func deliveryModelFromDomain(d *domain.NoticeDelivery) *NoticeDeliveryModel {
	if d == nil {
		return nil
	}

	return &NoticeDeliveryModel{
		ID:                d.ID,
		NoticeID:          d.NoticeID,
		Mode:              d.Mode,
		Recipient:         d.Recipient,
		Succeeded:         d.Succeeded,
		StatusCode:        d.StatusCode,
		ProviderMessageID: d.ProviderMessageID,
		Error:             d.Error,
		CreatedAt:         d.CreatedAt,
	}
}

func deliveryModelToDomain(m *NoticeDeliveryModel) *domain.NoticeDelivery {
	if m == nil {
		return nil
	}

	return &domain.NoticeDelivery{
		ID:                m.ID,
		NoticeID:          m.NoticeID,
		Mode:              m.Mode,
		Recipient:         m.Recipient,
		Succeeded:         m.Succeeded,
		StatusCode:        m.StatusCode,
		ProviderMessageID: m.ProviderMessageID,
		Error:             m.Error,
		CreatedAt:         m.CreatedAt,
	}
}

func sequenceModelToDomain(m *SequenceCounterModel) *domain.SequenceCounter {
	if m == nil {
		return nil
	}

	return &domain.SequenceCounter{
		PartitionKey: m.PartitionKey,
		Prefix:       m.Prefix,
		CategoryCode: m.CategoryCode,
		DateStamp:    m.DateStamp,
		CurrentValue: m.CurrentValue,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func encodeModes(modes []domain.CommunicationMode) string {
	parts := make([]string, 0, len(modes))
	for _, mode := range modes {
		parts = append(parts, mode.String())
	}
	return strings.Join(parts, ",")
}

func decodeModes(encoded string) []domain.CommunicationMode {
	if strings.TrimSpace(encoded) == "" {
		return nil
	}

	parts := strings.Split(encoded, ",")
	modes := make([]domain.CommunicationMode, 0, len(parts))
	for _, part := range parts {
		modes = append(modes, domain.CommunicationMode(strings.TrimSpace(part)))
	}
	return modes
}
