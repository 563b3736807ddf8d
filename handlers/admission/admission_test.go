package admission

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func TestGateOpen(t *testing.T) {
	cases := []struct {
		name  string
		value string
		err   error
		want  bool
	}{
		{"explicitly open", "true", nil, true},
		{"explicitly closed", "false", nil, false},
		{"malformed value fails open", "banana", nil, true},
		{"missing row fails open", "", gorm.ErrRecordNotFound, true},
		{"database error fails open", "", errors.New("connection refused"), true},
	}
	for _, tc := range cases {
		if got := gateOpen(tc.value, tc.err); got != tc.want {
			t.Errorf("%s: gateOpen(%q, %v) = %v, want %v", tc.name, tc.value, tc.err, got, tc.want)
		}
	}
}

func TestResubmissionBlocked(t *testing.T) {
	cases := []struct {
		name  string
		prior []model.ApplicationStatus
		want  bool
	}{
		{"no earlier applications", nil, false},
		{"pending blocks", []model.ApplicationStatus{model.ApplicationPending}, true},
		{"approved blocks", []model.ApplicationStatus{model.ApplicationApproved}, true},
		{"rejected does not block", []model.ApplicationStatus{model.ApplicationRejected}, false},
		{"two rejections do not block", []model.ApplicationStatus{model.ApplicationRejected, model.ApplicationRejected}, false},
		{"rejected then pending blocks", []model.ApplicationStatus{model.ApplicationRejected, model.ApplicationPending}, true},
	}
	for _, tc := range cases {
		if got := resubmissionBlocked(tc.prior); got != tc.want {
			t.Errorf("%s: resubmissionBlocked(%v) = %v, want %v", tc.name, tc.prior, got, tc.want)
		}
	}
}

func TestProvisioningErrorStatusCodes(t *testing.T) {
	h := &AdmissionHandler{}

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown application", services.ErrApplicationNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"already rejected", services.ErrAlreadyRejected, fiber.StatusConflict, "REVIEW_STATE_CONFLICT"},
		{"already reviewed", services.ErrAlreadyReviewed, fiber.StatusConflict, "REVIEW_STATE_CONFLICT"},
		{"account exists", services.ErrAccountExists, fiber.StatusConflict, "REVIEW_STATE_CONFLICT"},
		{"not approved", services.ErrNotApproved, fiber.StatusConflict, "REVIEW_STATE_CONFLICT"},
		{"student missing", services.ErrStudentMissing, fiber.StatusConflict, "REVIEW_STATE_CONFLICT"},
		{"account missing", services.ErrAccountMissing, fiber.StatusConflict, "REVIEW_STATE_CONFLICT"},
		{"missing reason", services.ErrReasonRequired, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"lock busy", services.ErrLockBusy, fiber.StatusConflict, "PROVISIONING_IN_PROGRESS"},
		{"wrapped lock busy", fmt.Errorf("acquire provisioning lock: %w", services.ErrLockBusy), fiber.StatusConflict, "PROVISIONING_IN_PROGRESS"},
		{"internal failure", errors.New("connection reset"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/decide", func(c *fiber.Ctx) error {
				return h.provisioningError(c, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest("POST", "/decide", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			var envelope struct {
				Success bool `json:"success"`
				Error   *struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(body, &envelope); err != nil {
				t.Fatalf("unmarshal body %q: %v", body, err)
			}
			if envelope.Success {
				t.Error("success = true on an error response")
			}
			if envelope.Error == nil || envelope.Error.Code != tc.code {
				t.Errorf("error code = %+v, want %q", envelope.Error, tc.code)
			}
		})
	}
}
