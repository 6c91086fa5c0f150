package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"reporter/src/utils"
)

func TestRenderTemplate(t *testing.T) {
	tc := utils.TemplateContext{
		ReportName: "Fleet Devices",
		ReportType: "devices",
		Status:     "success",
		Error:      "",
		JobID:      "job-42",
		Extension:  "csv",
		Timestamp:  time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
	}

	tests := []struct {
		template string
		expected string
	}{
		{"{reportName}-{date}.{extension}", "Fleet Devices-2024-01-02.csv"},
		{"{reportType}/{time}", "devices/15-04-05"},
		{"Report {reportName} is {status} ({jobId}) at {timestamp}", "Report Fleet Devices is success (job-42) at 2024-01-02T15:04:05Z"},
		{"no placeholders", "no placeholders"},
		{"{unknown} stays", "{unknown} stays"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, utils.RenderTemplate(tt.template, tc))
	}
}
