package httpadapter

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rmendes/permitflow/internal/core/domain"
)

var leadExportColumns = []string{
	"ID", "Name", "Email", "Phone", "Service Type", "Status",
	"Assigned To", "Estimated Value", "Last Contact", "Created",
}

// exportLeads streams the lead book as an xlsx workbook for the sales team.
func (rt *Router) exportLeads(w http.ResponseWriter, r *http.Request) {
	status := domain.LeadStatus(strings.ToLower(r.URL.Query().Get("status")))
	leads, err := rt.leads.ListLeads(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}

	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Leads"
	file.SetSheetName("Sheet1", sheet)

	for col, header := range leadExportColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = file.SetCellValue(sheet, cell, header)
	}

	for row, lead := range leads {
		lastContact := ""
		if !lead.LastContactDate.IsZero() {
			lastContact = lead.LastContactDate.UTC().Format(time.RFC3339)
		}
		values := []any{
			lead.ID, lead.Name, lead.Email, lead.Phone, lead.ServiceType, string(lead.Status),
			lead.AssignedTo, lead.EstimatedValue, lastContact, lead.CreatedAt.UTC().Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = file.SetCellValue(sheet, cell, value)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.xlsx"`)
	if err := file.Write(w); err != nil {
		slog.Warn("lead_export_write_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
	}
}
