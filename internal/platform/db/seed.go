package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"attendsuite/internal/auth"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/platform/config"
)

type seedSetting struct {
	Key         string
	Value       any
	Category    string
	Description string
}

var defaultSettings = []seedSetting{
	{Key: "work_start_time", Value: "08:00", Category: "attendance", Description: "Default work start time"},
	{Key: "work_end_time", Value: "17:00", Category: "attendance", Description: "Default work end time"},
	{Key: "late_threshold_minutes", Value: 15, Category: "attendance", Description: "Grace period before an arrival counts as late"},
	{Key: "face_match_threshold", Value: 0.6, Category: "face_recognition", Description: "Minimum face match confidence"},
	{Key: "working_days", Value: []int{1, 2, 3, 4, 5}, Category: "attendance", Description: "Default working days (0=Sunday)"},
	{Key: "company_name", Value: "OA System", Category: "general", Description: "Company name"},
	{Key: "enable_face_recognition", Value: true, Category: "face_recognition", Description: "Require face verification on check-in"},
	{Key: "max_break_minutes", Value: 60, Category: "attendance", Description: "Maximum break time per day"},
}

type seedHoliday struct {
	Name        string
	Date        string
	Description string
}

var defaultHolidays = []seedHoliday{
	{Name: "New Year Day", Date: "2025-01-01", Description: "New Year celebration"},
	{Name: "Republic Day", Date: "2025-01-26", Description: "Republic Day"},
	{Name: "Independence Day", Date: "2025-08-15", Description: "Independence Day"},
	{Name: "Gandhi Jayanti", Date: "2025-10-02", Description: "Gandhi Jayanti"},
	{Name: "Christmas", Date: "2025-12-25", Description: "Christmas"},
}

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureSettings(ctx, pool); err != nil {
		return err
	}
	if err := ensureHolidays(ctx, pool); err != nil {
		return err
	}
	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		if err := ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword, cfg.SeedAdminName); err != nil {
			return err
		}
	}
	return nil
}

func ensureSettings(ctx context.Context, pool *pgxpool.Pool) error {
	for _, setting := range defaultSettings {
		value, err := json.Marshal(setting.Value)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, `
      INSERT INTO settings (key, value, category, description)
      VALUES ($1,$2,$3,$4)
      ON CONFLICT (key) DO NOTHING
    `, setting.Key, value, setting.Category, setting.Description); err != nil {
			return err
		}
	}
	return nil
}

func ensureHolidays(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM holidays").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, holiday := range defaultHolidays {
		if _, err := pool.Exec(ctx, `
      INSERT INTO holidays (name, date, type, description)
      VALUES ($1,$2,'public',$3)
    `, holiday.Name, holiday.Date, holiday.Description); err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password, fullName string) error {
	var existing string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, full_name, role, status)
    VALUES ($1,$2,$3,$4,'active')
  `, email, hash, fullName, user.RoleAdmin)
	return err
}
