package cron

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/model"
)

// PurgeExpiredTokens removes expired JWT blacklist entries and used or
// expired password reset tokens. Runs hourly.
func (m *CronManager) PurgeExpiredTokens() {
	jobName := "purge_expired_tokens"
	now := time.Now()

	blacklist := m.db.Where("expires_at < ?", now).Delete(&model.JWTTokenBlacklist{})
	if blacklist.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to purge blacklist: %w", blacklist.Error))
		return
	}

	resets := m.db.Where("expires_at < ? OR used_at IS NOT NULL", now).Delete(&model.PasswordResetToken{})
	if resets.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to purge reset tokens: %w", resets.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d blacklist entries, %d reset tokens",
		blacklist.RowsAffected, resets.RowsAffected))
}

// MarkOverdueInvoices flips pending fee invoices past their due date (plus
// the configured grace period) to overdue. Runs daily.
func (m *CronManager) MarkOverdueInvoices() {
	jobName := "mark_overdue_invoices"

	graceDays := 7
	var setting model.AppSetting
	if err := m.db.Where("key = ?", "fees.overdue_grace_days").First(&setting).Error; err == nil {
		if v, err := strconv.Atoi(setting.Value); err == nil && v >= 0 {
			graceDays = v
		}
	}

	cutoff := time.Now().AddDate(0, 0, -graceDays)
	result := m.db.Model(&model.FeeInvoice{}).
		Where("status = ? AND due_at < ?", model.FeePending, cutoff).
		Update("status", model.FeeOverdue)

	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to mark overdue invoices: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Marked %d invoices overdue", result.RowsAffected))
}

// ExpireAnnouncements soft-deletes announcements past their expiry time.
// Runs daily.
func (m *CronManager) ExpireAnnouncements() {
	jobName := "expire_announcements"

	result := m.db.Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Delete(&model.Announcement{})

	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to expire announcements: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Expired %d announcements", result.RowsAffected))
}

// CleanupCronLogs trims cron job logs older than 30 days. Runs daily.
func (m *CronManager) CleanupCronLogs() {
	jobName := "cleanup_cron_logs"

	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.Unscoped().Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})

	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to clean cron logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d old log rows", result.RowsAffected))
}
