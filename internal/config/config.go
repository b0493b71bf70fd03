package config

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

type Config struct {
	Env string

	ClassroomAPIBaseURL      string
	ClassroomLTIKey          string
	ClassroomLTISecret       string
	ClassroomCompanyID       string
	ClassroomOverrideRoomIDs []string

	IdentityAPIBaseURL  string
	IdentityPartnerID   string
	IdentityAdminSecret string

	ReportFromDate      string
	ReportToDate        string
	ReportOutputDir     string
	ReportTimezone      string
	ReportChatTypes     []string
	ReportCompanyExport bool
	RoomConcurrency     int

	DatabaseURL      string
	ReportWebhookURL string
}

var knownChatTypes = map[string]struct{}{
	"public":    {},
	"qna":       {},
	"moderator": {},
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	from, err := time.Parse(dateLayout, c.ReportFromDate)
	if err != nil {
		return fmt.Errorf("REPORT_FROM_DATE is invalid: %w", err)
	}
	to, err := time.Parse(dateLayout, c.ReportToDate)
	if err != nil {
		return fmt.Errorf("REPORT_TO_DATE is invalid: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("REPORT_TO_DATE %s is before REPORT_FROM_DATE %s", c.ReportToDate, c.ReportFromDate)
	}
	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE is invalid: %w", err)
	}
	for _, ct := range c.ReportChatTypes {
		if _, ok := knownChatTypes[ct]; !ok {
			return fmt.Errorf("REPORT_CHAT_TYPES contains unknown chat type %q", ct)
		}
	}
	if c.RoomConcurrency <= 0 {
		return fmt.Errorf("REPORT_ROOM_CONCURRENCY must be positive, got %d", c.RoomConcurrency)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "CLASSROOM_API_BASE_URL", value: c.ClassroomAPIBaseURL},
		{name: "CLASSROOM_LTI_KEY", value: c.ClassroomLTIKey},
		{name: "CLASSROOM_LTI_SECRET", value: c.ClassroomLTISecret},
		{name: "CLASSROOM_COMPANY_ID", value: c.ClassroomCompanyID},
		{name: "IDENTITY_API_BASE_URL", value: c.IdentityAPIBaseURL},
		{name: "IDENTITY_PARTNER_ID", value: c.IdentityPartnerID},
		{name: "IDENTITY_ADMIN_SECRET", value: c.IdentityAdminSecret},
		{name: "REPORT_FROM_DATE", value: c.ReportFromDate},
		{name: "REPORT_TO_DATE", value: c.ReportToDate},
		{name: "REPORT_OUTPUT_DIR", value: c.ReportOutputDir},
		{name: "REPORT_TIMEZONE", value: c.ReportTimezone},
	}
}

// Location resolves the display timezone. Only meaningful after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
