// Package config loads runtime configuration from environment variables,
// with defaults matching the authoritative attendance rule set.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/payroll"
)

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	DBPath     string `mapstructure:"DB_PATH"`
	ReportsDir string `mapstructure:"REPORTS_DIR"`
	LocalDev   bool   `mapstructure:"LOCAL_DEV"`

	WorkStart     string `mapstructure:"WORK_START"`
	WorkEnd       string `mapstructure:"WORK_END"`
	CheckInStart  string `mapstructure:"CHECK_IN_START"`
	CheckInEnd    string `mapstructure:"CHECK_IN_END"`
	CheckOutStart string `mapstructure:"CHECK_OUT_START"`
	CheckOutEnd   string `mapstructure:"CHECK_OUT_END"`
	RestWeekdays  string `mapstructure:"REST_WEEKDAYS"`

	DailyHours       float64 `mapstructure:"DAILY_HOURS"`
	FullDayThreshold float64 `mapstructure:"FULL_DAY_THRESHOLD"`
	HalfDayThreshold float64 `mapstructure:"HALF_DAY_THRESHOLD"`

	WorkingDaysPerMonth int64  `mapstructure:"WORKING_DAYS_PER_MONTH"`
	LatePenaltyRate     string `mapstructure:"LATE_PENALTY_RATE"`
	EarlyPenaltyRate    string `mapstructure:"EARLY_PENALTY_RATE"`
	ShortageThreshold   string `mapstructure:"SHORTAGE_THRESHOLD_HOURS"`

	ReportTime         string `mapstructure:"REPORT_TIME"`
	ReportSkipWeekdays string `mapstructure:"REPORT_SKIP_WEEKDAYS"`

	OfficeLatitude  float64 `mapstructure:"OFFICE_LATITUDE"`
	OfficeLongitude float64 `mapstructure:"OFFICE_LONGITUDE"`
	OfficeRadius    float64 `mapstructure:"OFFICE_RADIUS_METERS"`
}

// Load reads configuration from environment variables.
func Load() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DB_PATH", "attendance.db")
	viper.SetDefault("REPORTS_DIR", "reports")
	viper.SetDefault("LOCAL_DEV", false)

	// Authoritative shift rule set: 09:30-18:00, 6-day week, Sunday rest.
	viper.SetDefault("WORK_START", "09:30")
	viper.SetDefault("WORK_END", "18:00")
	viper.SetDefault("CHECK_IN_START", "07:00")
	viper.SetDefault("CHECK_IN_END", "11:00")
	viper.SetDefault("CHECK_OUT_START", "16:00")
	viper.SetDefault("CHECK_OUT_END", "20:00")
	viper.SetDefault("REST_WEEKDAYS", "Sunday")

	viper.SetDefault("DAILY_HOURS", 8.5)
	viper.SetDefault("FULL_DAY_THRESHOLD", 8.5)
	viper.SetDefault("HALF_DAY_THRESHOLD", 4.0)

	viper.SetDefault("WORKING_DAYS_PER_MONTH", 26)
	viper.SetDefault("LATE_PENALTY_RATE", "0.02")
	viper.SetDefault("EARLY_PENALTY_RATE", "0.03")
	viper.SetDefault("SHORTAGE_THRESHOLD_HOURS", "2")

	// Report calendar is independent of the rest-day calendar.
	viper.SetDefault("REPORT_TIME", "18:00")
	viper.SetDefault("REPORT_SKIP_WEEKDAYS", "Saturday,Sunday")

	viper.SetDefault("OFFICE_LATITUDE", 41.304502)
	viper.SetDefault("OFFICE_LONGITUDE", 69.321159)
	viper.SetDefault("OFFICE_RADIUS_METERS", 200.0)

	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}

// ShiftConfig builds the attendance rule set from the raw values.
func (c Config) ShiftConfig() (attendance.ShiftConfig, error) {
	shift := attendance.ShiftConfig{
		DailyHours:       c.DailyHours,
		FullDayThreshold: c.FullDayThreshold,
		HalfDayThreshold: c.HalfDayThreshold,
	}

	var err error
	if shift.WorkStart, err = attendance.ParseTimeOfDay(c.WorkStart); err != nil {
		return shift, err
	}
	if shift.WorkEnd, err = attendance.ParseTimeOfDay(c.WorkEnd); err != nil {
		return shift, err
	}
	if shift.CheckInWindow.Start, err = attendance.ParseTimeOfDay(c.CheckInStart); err != nil {
		return shift, err
	}
	if shift.CheckInWindow.End, err = attendance.ParseTimeOfDay(c.CheckInEnd); err != nil {
		return shift, err
	}
	if shift.CheckOutWindow.Start, err = attendance.ParseTimeOfDay(c.CheckOutStart); err != nil {
		return shift, err
	}
	if shift.CheckOutWindow.End, err = attendance.ParseTimeOfDay(c.CheckOutEnd); err != nil {
		return shift, err
	}
	if shift.RestWeekdays, err = parseWeekdays(c.RestWeekdays); err != nil {
		return shift, err
	}

	return shift, nil
}

// PayrollConfig builds the deduction-rate policy from the raw values.
func (c Config) PayrollConfig() (payroll.Config, error) {
	cfg := payroll.Config{
		WorkingDaysPerMonth: c.WorkingDaysPerMonth,
		DailyHours:          decimal.NewFromFloat(c.DailyHours),
	}

	var err error
	if cfg.LatePenaltyRate, err = decimal.NewFromString(c.LatePenaltyRate); err != nil {
		return cfg, fmt.Errorf("invalid LATE_PENALTY_RATE: %w", err)
	}
	if cfg.EarlyPenaltyRate, err = decimal.NewFromString(c.EarlyPenaltyRate); err != nil {
		return cfg, fmt.Errorf("invalid EARLY_PENALTY_RATE: %w", err)
	}
	if cfg.ShortageThreshold, err = decimal.NewFromString(c.ShortageThreshold); err != nil {
		return cfg, fmt.Errorf("invalid SHORTAGE_THRESHOLD_HOURS: %w", err)
	}

	return cfg, nil
}

// SchedulerConfig builds the report scheduler settings.
func (c Config) SchedulerConfig() (api.SchedulerConfig, error) {
	cfg := api.DefaultSchedulerConfig()

	var err error
	if cfg.FireAt, err = attendance.ParseTimeOfDay(c.ReportTime); err != nil {
		return cfg, err
	}
	if cfg.SkipWeekdays, err = parseWeekdays(c.ReportSkipWeekdays); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Office builds the geofence, or nil when the radius is disabled.
func (c Config) Office() *attendance.Office {
	if c.OfficeRadius <= 0 {
		return nil
	}
	return &attendance.Office{
		Latitude:     c.OfficeLatitude,
		Longitude:    c.OfficeLongitude,
		RadiusMeters: c.OfficeRadius,
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// parseWeekdays parses a comma-separated list of weekday names.
func parseWeekdays(s string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, ok := weekdayNames[strings.ToLower(part)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days[day] = true
	}
	return days, nil
}
