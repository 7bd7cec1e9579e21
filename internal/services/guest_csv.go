package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/charlesng35/soiree/internal/models"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/metrics"
)

var (
	csvNameHeaders  = []string{"name", "imie", "imię"}
	csvPhoneHeaders = []string{"phone", "telefon", "tel"}
)

// ExportHeader is the first line of ExportCSV output.
const ExportHeader = "Name,Code,Role,RSVP Main,RSVP Dinner,Diet,Song Request,Plus One"

// ImportResult summarises a CSV import.
type ImportResult struct {
	Success bool     `json:"success"`
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// ImportCSV creates GUEST rows from comma separated text. The header must
// name a name column and may name a phone column. Fields are split on commas
// without quote handling; blank lines are skipped but still counted in the
// row numbers of reported errors.
func (s *GuestService) ImportCSV(ctx context.Context, admin *models.Guest, data string) (*ImportResult, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(strings.ReplaceAll(data, "\r\n", "\n"))
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return nil, apperrors.NewBadRequest("CSV must have header row and at least one data row")
	}

	header := strings.Split(lines[0], ",")
	nameIdx := columnIndex(header, csvNameHeaders)
	phoneIdx := columnIndex(header, csvPhoneHeaders)
	if nameIdx < 0 {
		return nil, apperrors.NewBadRequest(`CSV must have a "name" column`)
	}

	result := &ImportResult{Success: true, Errors: []string{}}
	for i := 1; i < len(lines); i++ {
		// Rows are numbered by physical line, blank ones included.
		row := i + 1
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		values := strings.Split(line, ",")

		name := field(values, nameIdx)
		if name == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing name", row))
			continue
		}

		guest := models.Guest{
			Name:        name,
			Role:        models.RoleGuest,
			Phone:       field(values, phoneIdx),
			InvitedByID: &admin.ID,
		}
		if err := s.codes.create(ctx, s.db, &guest); err != nil {
			s.log.Warn("csv row import failed", zap.Int("row", row), zap.Error(err))
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s - Failed to create", row, name))
			continue
		}
		result.Created++
	}

	if result.Created > 0 {
		metrics.InvitesCreated.WithLabelValues("csv").Add(float64(result.Created))
	}
	return result, nil
}

func columnIndex(header []string, names []string) int {
	for i, column := range header {
		column = strings.ToLower(strings.TrimSpace(column))
		for _, name := range names {
			if column == name {
				return i
			}
		}
	}
	return -1
}

func field(values []string, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[idx])
}

// ExportCSV renders every guest, oldest first. Each field is double-quoted;
// embedded quotes are doubled.
func (s *GuestService) ExportCSV(ctx context.Context, admin *models.Guest) (string, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return "", err
	}

	var guests []models.Guest
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&guests).Error; err != nil {
		return "", failedUnlessApp("export guests", err, s.log)
	}

	lines := make([]string, 0, len(guests)+1)
	lines = append(lines, ExportHeader)
	for _, g := range guests {
		lines = append(lines, csvRow(
			g.Name,
			g.Code,
			g.Role,
			yesNo(g.RSVPMain),
			yesNo(g.RSVPDinner),
			g.Diet,
			g.SongRequest,
			g.PlusOneName,
		))
	}
	return strings.Join(lines, "\n"), nil
}

func csvRow(values ...string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
