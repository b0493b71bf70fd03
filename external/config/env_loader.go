package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/shussekin/internal/config"
)

type envConfig struct {
	Env                      string   `env:"ENV" envDefault:"production"`
	ClassroomAPIBaseURL      string   `env:"CLASSROOM_API_BASE_URL,required"`
	ClassroomLTIKey          string   `env:"CLASSROOM_LTI_KEY,required"`
	ClassroomLTISecret       string   `env:"CLASSROOM_LTI_SECRET,required"`
	ClassroomCompanyID       string   `env:"CLASSROOM_COMPANY_ID,required"`
	ClassroomOverrideRoomIDs []string `env:"CLASSROOM_OVERRIDE_ROOM_IDS"`
	IdentityAPIBaseURL       string   `env:"IDENTITY_API_BASE_URL,required"`
	IdentityPartnerID        string   `env:"IDENTITY_PARTNER_ID,required"`
	IdentityAdminSecret      string   `env:"IDENTITY_ADMIN_SECRET,required"`
	ReportFromDate           string   `env:"REPORT_FROM_DATE,required"`
	ReportToDate             string   `env:"REPORT_TO_DATE,required"`
	ReportOutputDir          string   `env:"REPORT_OUTPUT_DIR,required"`
	ReportTimezone           string   `env:"REPORT_TIMEZONE" envDefault:"America/Los_Angeles"`
	ReportChatTypes          []string `env:"REPORT_CHAT_TYPES"`
	ReportCompanyExport      bool     `env:"REPORT_COMPANY_EXPORT" envDefault:"false"`
	RoomConcurrency          int      `env:"REPORT_ROOM_CONCURRENCY" envDefault:"4"`
	DatabaseURL              string   `env:"DATABASE_URL"`
	ReportWebhookURL         string   `env:"REPORT_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                      raw.Env,
		ClassroomAPIBaseURL:      raw.ClassroomAPIBaseURL,
		ClassroomLTIKey:          raw.ClassroomLTIKey,
		ClassroomLTISecret:       raw.ClassroomLTISecret,
		ClassroomCompanyID:       raw.ClassroomCompanyID,
		ClassroomOverrideRoomIDs: raw.ClassroomOverrideRoomIDs,
		IdentityAPIBaseURL:       raw.IdentityAPIBaseURL,
		IdentityPartnerID:        raw.IdentityPartnerID,
		IdentityAdminSecret:      raw.IdentityAdminSecret,
		ReportFromDate:           raw.ReportFromDate,
		ReportToDate:             raw.ReportToDate,
		ReportOutputDir:          raw.ReportOutputDir,
		ReportTimezone:           raw.ReportTimezone,
		ReportChatTypes:          raw.ReportChatTypes,
		ReportCompanyExport:      raw.ReportCompanyExport,
		RoomConcurrency:          raw.RoomConcurrency,
		DatabaseURL:              raw.DatabaseURL,
		ReportWebhookURL:         raw.ReportWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
