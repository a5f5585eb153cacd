package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DateStampLayout is the calendar-day stamp embedded in formatted ids.
	DateStampLayout = "20060102"

	sequencePadding = 4
)

// Well-known allocation prefixes.
const (
	PrefixCase            = "LC"
	PrefixNotice          = "PLN"
	PrefixAcknowledgement = "ACKN"
	PrefixLawyer          = "LWYR"
)

var prefixPattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// SequenceCounter is the allocation state for one (prefix, category, day)
// partition. Rows are created lazily on first allocation and never deleted;
// a new day starts a fresh row so numbering restarts at 1.
type SequenceCounter struct {
	PartitionKey string `gorm:"type:varchar(32);primaryKey"`
	Prefix       string `gorm:"type:varchar(10);not null"`
	CategoryCode string `gorm:"type:varchar(10);not null;default:''"`
	DateStamp    string `gorm:"type:varchar(8);not null"`
	CurrentValue int64  `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidatePrefix enforces the prefix character rules: uppercase alphanumeric,
// 2-10 characters. Category codes follow the same rules when present.
func ValidatePrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return fmt.Errorf("%w: prefix %q must be 2-10 uppercase alphanumeric characters", ErrValidation, prefix)
	}
	return nil
}

// ValidateCategoryCode accepts an empty category (no category segment) or one
// following the prefix character rules.
func ValidateCategoryCode(category string) error {
	if category == "" {
		return nil
	}
	if !prefixPattern.MatchString(category) {
		return fmt.Errorf("%w: category code %q must be 2-10 uppercase alphanumeric characters", ErrValidation, category)
	}
	return nil
}

// PartitionKey builds the counter key: PREFIX-[CAT-]YYYYMMDD.
func PartitionKey(prefix, category, dateStamp string) string {
	if category == "" {
		return fmt.Sprintf("%s-%s", prefix, dateStamp)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, category, dateStamp)
}

// FormatSequenceID renders PREFIX-YYYYMMDD[-CAT]-NNNN. The sequence segment
// is zero-padded to four digits and grows beyond four without truncation.
func FormatSequenceID(prefix, dateStamp, category string, n int64) string {
	if category == "" {
		return fmt.Sprintf("%s-%s-%0*d", prefix, dateStamp, sequencePadding, n)
	}
	return fmt.Sprintf("%s-%s-%s-%0*d", prefix, dateStamp, category, sequencePadding, n)
}

// ParsedSequenceID is the decomposition of a formatted identifier.
type ParsedSequenceID struct {
	Prefix       string
	DateStamp    string
	CategoryCode string
	Sequence     int64
}

// ParseSequenceID recovers (prefix, date, category, n) from a formatted id.
// It is the inverse of FormatSequenceID for any id that function produced.
func ParseSequenceID(id string) (ParsedSequenceID, error) {
	parts := strings.Split(strings.TrimSpace(id), "-")
	if len(parts) != 3 && len(parts) != 4 {
		return ParsedSequenceID{}, fmt.Errorf("%w: malformed sequence id %q", ErrValidation, id)
	}

	parsed := ParsedSequenceID{Prefix: parts[0], DateStamp: parts[1]}
	if err := ValidatePrefix(parsed.Prefix); err != nil {
		return ParsedSequenceID{}, err
	}
	if _, err := time.Parse(DateStampLayout, parsed.DateStamp); err != nil {
		return ParsedSequenceID{}, fmt.Errorf("%w: malformed date stamp in %q", ErrValidation, id)
	}

	rawSequence := parts[len(parts)-1]
	if len(parts) == 4 {
		parsed.CategoryCode = parts[2]
		if err := ValidateCategoryCode(parsed.CategoryCode); err != nil {
			return ParsedSequenceID{}, err
		}
	}

	n, err := strconv.ParseInt(rawSequence, 10, 64)
	if err != nil || n < 1 {
		return ParsedSequenceID{}, fmt.Errorf("%w: malformed sequence segment in %q", ErrValidation, id)
	}
	parsed.Sequence = n

	return parsed, nil
}
